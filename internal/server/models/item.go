package models

// ItemTemplate is a catalog entry in a realm's store: everything the
// delivery engine and the shop need to know about an item kind.
type ItemTemplate struct {
	Entry        int64
	Name         string
	Class        int
	BuyPrice     int64
	MaxStackSize int32
	Durability   int32
}

// ItemInstance is a concrete, ownable stack of a catalog item. GUID is
// realm-scoped and allocated by the delivery engine; the row is never
// mutated by the portal after insertion.
type ItemInstance struct {
	GUID       int64
	Entry      int64
	OwnerGUID  int64
	Count      int32
	Durability int32
}
