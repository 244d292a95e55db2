package enums

// ProductSize is the fixed size run every ORY garment ships in.
type ProductSize string

const (
	SizeS  ProductSize = "S"
	SizeM  ProductSize = "M"
	SizeL  ProductSize = "L"
	SizeXL ProductSize = "XL"
)

// Sizes lists every valid size in display order.
func Sizes() []ProductSize {
	return []ProductSize{SizeS, SizeM, SizeL, SizeXL}
}

// ValidSize reports whether value is part of the size run.
func ValidSize(value ProductSize) bool {
	switch value {
	case SizeS, SizeM, SizeL, SizeXL:
		return true
	default:
		return false
	}
}

// OrderStatus tracks the post-creation lifecycle of an order.
type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
)

// PaymentStatus is the terminal outcome of a mock authorization.
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentFailureReason enumerates the fixed set of decline reasons the mock
// gateway can produce.
type PaymentFailureReason string

const (
	PaymentFailureInsufficientFunds PaymentFailureReason = "insufficient_funds"
	PaymentFailureCardDeclined      PaymentFailureReason = "card_declined"
	PaymentFailureStolenCard        PaymentFailureReason = "stolen_card"
)

// EmailType labels the notification records the mock mailer produces.
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeShipping          EmailType = "shipping_notification"
	EmailTypeNewsletterWelcome EmailType = "newsletter_welcome"
)

// DiscountType distinguishes percentage promos from fixed-amount promos.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// FulfillmentTaskStatus tracks deferred shipping work.
type FulfillmentTaskStatus string

const (
	FulfillmentTaskPending FulfillmentTaskStatus = "pending"
	FulfillmentTaskDone    FulfillmentTaskStatus = "done"
)
