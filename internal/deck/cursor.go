package deck

// PhotoCursor moves through the photos of the store's current top card.
// Every method reports the resulting index and whether it changed.
type PhotoCursor struct {
	store *Store
}

func NewPhotoCursor(store *Store) *PhotoCursor {
	return &PhotoCursor{store: store}
}

// Index returns the top card's photo index, or 0 for an empty deck.
func (c *PhotoCursor) Index() int {
	top := c.store.top()
	if top == nil {
		return 0
	}
	return top.CurrentPhotoIndex
}

func (c *PhotoCursor) Next() (int, bool) {
	top := c.store.top()
	if top == nil || len(top.Images) == 0 {
		return 0, false
	}
	return c.SetIndex((top.CurrentPhotoIndex + 1) % len(top.Images))
}

func (c *PhotoCursor) Previous() (int, bool) {
	top := c.store.top()
	if top == nil || len(top.Images) == 0 {
		return 0, false
	}
	prev := top.CurrentPhotoIndex - 1
	if prev < 0 {
		prev = len(top.Images) - 1
	}
	return c.SetIndex(prev)
}

// SetIndex clamps i into the top card's photo range.
func (c *PhotoCursor) SetIndex(i int) (int, bool) {
	top := c.store.top()
	if top == nil {
		return 0, false
	}
	clamped := top.ClampPhotoIndex(i)
	changed := clamped != top.CurrentPhotoIndex
	top.CurrentPhotoIndex = clamped
	return clamped, changed
}
