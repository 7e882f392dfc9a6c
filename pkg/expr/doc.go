// Package expr provides CEL (Common Expression Language) support for route
// rules.
//
// Expressions have access to variables:
//   - `route` (string): The sanitised route path, e.g. "/products/<int:id>/"
//   - `name` (string): The route name, when the registry provides one
//   - `params` (list<string>): Placeholder names in the route
//   - `segments` (list<string>): Non-empty path segments
//
// And to functions:
//   - pathBase, pathDir, pathExt: URL path helpers
//   - hasParams(string): Whether a route has placeholders
//   - category(string): "page", "template" or "internal"
//
// The CEL string and list extensions are also enabled.
package expr
