package repositories

// ToggleRepository stores which comment sections of one page are visible.
type ToggleRepository interface {
	Visible(postID int) (bool, error)
	SetVisible(postID int, visible bool) error
	VisibleIDs() ([]int, error)
	Reset() error
}
