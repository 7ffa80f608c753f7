package models

// MasterKind names a master data table referenced by products
type MasterKind string

const (
	MasterCategory MasterKind = "category"
	MasterBrand    MasterKind = "brand"
	MasterColor    MasterKind = "color"
	MasterSize     MasterKind = "size"
)

// DeleteBlockedError is returned when a master row is still referenced by products
type DeleteBlockedError struct {
	Kind         MasterKind
	Code         string
	ProductCount int64
}

func (e *DeleteBlockedError) Error() string {
	return string(e.Kind) + " '" + e.Code + "' is used by products and cannot be deleted"
}
