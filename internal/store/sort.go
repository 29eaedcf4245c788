package store

import (
	"cmp"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/five82/taskboard/internal/model"
)

type sortValue struct {
	text    string
	number  int64
	numeric bool
}

func textValue(s string) sortValue { return sortValue{text: s} }

func idValue(id model.ID) sortValue {
	n, ok := id.Int()
	return sortValue{text: id.String(), number: n, numeric: ok}
}

// taskSortFields are the keys accepted by TaskStore.Sort, named as on the wire.
var taskSortFields = map[string]func(model.Task) sortValue{
	"id":        func(t model.Task) sortValue { return idValue(t.ID) },
	"projectId": func(t model.Task) sortValue { return idValue(t.ProjectID) },
	"title":     func(t model.Task) sortValue { return textValue(t.Title) },
	"assignee":  func(t model.Task) sortValue { return textValue(t.Assignee) },
	"status":    func(t model.Task) sortValue { return textValue(string(t.Status)) },
	"dueDate":   func(t model.Task) sortValue { return textValue(t.DueDate) },
}

// TaskSortKeys lists the sortable task fields in display order.
var TaskSortKeys = []string{"title", "assignee", "status", "dueDate", "id"}

// valueComparer is single-use: collators keep internal buffers and must not
// be shared between goroutines.
type valueComparer struct {
	collator *collate.Collator
}

func newValueComparer() *valueComparer {
	return &valueComparer{collator: collate.New(language.Und)}
}

func (c *valueComparer) compare(a, b sortValue) int {
	if a.numeric && b.numeric {
		return cmp.Compare(a.number, b.number)
	}
	return c.collator.CompareString(a.text, b.text)
}
