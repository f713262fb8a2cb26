package handler

// Route type
type Route string

const (
	// RouteCreate publish a new release
	RouteCreate Route = "create"
	// RouteList list releases page by page
	RouteList Route = "list"
	// RouteListNames list distinct release names
	RouteListNames Route = "listNames"
	// RouteListVersions list distinct versions of a release name
	RouteListVersions Route = "listVersions"
	// RouteGet get a single release
	RouteGet Route = "get"
	// RouteDelete delete a release and its files
	RouteDelete Route = "delete"
)
