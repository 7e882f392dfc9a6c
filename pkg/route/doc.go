// Package route models the URL patterns registered by a web application and
// the sources they are read from.
//
// Regex routes are told apart from plain path patterns by their syntax, see
// [IsRegex]. They cannot be requested as-is and, like routes with
// placeholders, need an example URL.
//
// A [Route] is a path such as "/products/<int:id>/" that may contain
// path-parameter placeholders. Placeholders in Django (`<id>`, `<int:id>`,
// `(?P<id>\d+)`), gin/httprouter (`:id`, `*path`) and net/http (`{id}`,
// `{rest...}`) syntax are recognised, so a route can be compiled into a
// [Template] that tells whether a concrete URL is an instance of it.
//
// Routes are read through a [Source]:
//   - [Static]: an in-memory list.
//   - [File]: one route per line.
//   - [Command]: one route per line of an external command's output.
//   - [Gin]: the routes registered on a [gin.Engine].
//
// The command line selects between [File] and [Command]. [Gin] is for Go
// programs that embed the planner and want to check their own router
// without printing it first:
//
//	routes, err := route.Gin{Engine: engine}.Routes(ctx)
//	if err != nil {
//		return err
//	}
//
//	p := plan.Build(routes, matcher)
package route
