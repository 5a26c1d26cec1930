package entity

type Category struct {
	ID   string
	Name string
}

// DefaultCategories seed the categories collection when it is empty.
var DefaultCategories = []string{
	"Conference",
	"Workshop",
	"Concert",
	"Sports",
	"Exhibition",
	"Networking",
	"Festival",
	"Other",
}
