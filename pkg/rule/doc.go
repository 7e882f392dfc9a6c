// Package rule decides which routes should be checked, using an ordered set
// of include and exclude rules.
//
// Include rules are literal paths or example URLs. A route is included when
// it equals an include entry, or when the entry is an instance of the route's
// pattern (e.g. "/products/1/info" for "/products/<int:id>/info").
//
// Exclude rules are regular expressions anchored at the start of the route.
// Exclude-if rules are CEL expressions (see package expr) evaluated after the
// exclude regexes.
//
// Includes always win over excludes. Routes matched by no rule are tested.
package rule
