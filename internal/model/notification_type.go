package model

// Category is the type tag carried by every notification. The set is open:
// unknown values are valid and resolve to the default descriptor.
type Category string

// Broadcast-style categories, delivered through the global table.
const (
	CategoryAnnouncement Category = "announcement"
	CategorySystem       Category = "system"
	CategoryMaintenance  Category = "maintenance"
	CategoryPromotion    Category = "promotion"
)

// Transactional categories, delivered through the transaction table.
const (
	CategoryDueDate           Category = "due_date"
	CategoryPayment           Category = "payment"
	CategoryTransactionUpdate Category = "transaction_update"
	CategoryReminder          Category = "reminder"
)

// TypeDescriptor holds the display and routing attributes of a category.
type TypeDescriptor struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	PushEnabled bool   `json:"push_enabled"`
	Global      bool   `json:"global"`
}

// DefaultTypeDescriptor is returned for categories that are not registered.
var DefaultTypeDescriptor = TypeDescriptor{
	Name:        "Other",
	Icon:        "bell",
	Color:       "#868E96",
	PushEnabled: false,
	Global:      false,
}

var typeDescriptors = map[Category]TypeDescriptor{
	CategoryAnnouncement: {
		Name: "Announcement", Icon: "megaphone", Color: "#5B9BD5",
		PushEnabled: true, Global: true,
	},
	CategorySystem: {
		Name: "System", Icon: "gear", Color: "#CC5DE8",
		PushEnabled: true, Global: true,
	},
	CategoryMaintenance: {
		Name: "Maintenance", Icon: "wrench", Color: "#FFA94D",
		PushEnabled: false, Global: true,
	},
	CategoryPromotion: {
		Name: "Promotion", Icon: "tag", Color: "#6BCB77",
		PushEnabled: false, Global: true,
	},
	CategoryDueDate: {
		Name: "Due Date", Icon: "calendar", Color: "#FF6B6B",
		PushEnabled: true, Global: false,
	},
	CategoryPayment: {
		Name: "Payment", Icon: "credit-card", Color: "#6BCB77",
		PushEnabled: true, Global: false,
	},
	CategoryTransactionUpdate: {
		Name: "Transaction Update", Icon: "refresh", Color: "#5B9BD5",
		PushEnabled: true, Global: false,
	},
	CategoryReminder: {
		Name: "Reminder", Icon: "clock", Color: "#FFD93D",
		PushEnabled: false, Global: false,
	},
}

// Describe returns the descriptor registered for category, or
// DefaultTypeDescriptor when there is none.
func Describe(category Category) TypeDescriptor {
	if d, ok := typeDescriptors[category]; ok {
		return d
	}
	return DefaultTypeDescriptor
}

// IsGlobalCategory reports whether category is delivered through the
// global (broadcast) source.
func IsGlobalCategory(category Category) bool {
	return Describe(category).Global
}

// Categories returns every registered category, global ones first, in a
// stable order.
func Categories() []Category {
	return []Category{
		CategoryAnnouncement,
		CategorySystem,
		CategoryMaintenance,
		CategoryPromotion,
		CategoryDueDate,
		CategoryPayment,
		CategoryTransactionUpdate,
		CategoryReminder,
	}
}
