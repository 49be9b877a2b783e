package repo

// Content is the tagged payload of a tracked file: either text to keep or a
// marker that the file must be removed. The zero value keeps empty text.
type Content struct {
	text    string
	deleted bool
}

// Keep wraps file text that should exist on disk after a persist.
func Keep(text string) Content {
	return Content{text: text}
}

// Delete marks the file for removal on the next persist.
func Delete() Content {
	return Content{deleted: true}
}

// Text returns the kept text. ok is false for a deletion marker.
func (c Content) Text() (text string, ok bool) {
	return c.text, !c.deleted
}

// Deleted reports whether the record marks a removal.
func (c Content) Deleted() bool {
	return c.deleted
}
