package models

const (
	OrderStatusPlaced    = "placed"
	OrderStatusPreparing = "preparing"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"

	StoreStatusActive   = "active"
	StoreStatusInactive = "inactive"
)

// ScheduleType names the meal period a menu schedule covers. The same
// buckets are used for personalised time-slot preferences.
type ScheduleType string

const (
	ScheduleBreakfast ScheduleType = "breakfast"
	ScheduleLunch     ScheduleType = "lunch"
	ScheduleSnacks    ScheduleType = "snacks"
	ScheduleDinner    ScheduleType = "dinner"
	ScheduleLateNight ScheduleType = "late_night"
	ScheduleSpecial   ScheduleType = "special"
)

// TimeSlotForHour buckets an hour of day into the meal period it falls in.
func TimeSlotForHour(hour int) ScheduleType {
	switch {
	case hour >= 5 && hour < 11:
		return ScheduleBreakfast
	case hour >= 11 && hour < 16:
		return ScheduleLunch
	case hour >= 16 && hour < 19:
		return ScheduleSnacks
	case hour >= 19 && hour < 23:
		return ScheduleDinner
	default:
		return ScheduleLateNight
	}
}

type OfferType string

const (
	OfferTypeDiscount OfferType = "discount"
	OfferTypeBogo     OfferType = "bogo"
	OfferTypeCombo    OfferType = "combo"
	OfferTypeLoyalty  OfferType = "loyalty"
	OfferTypeSeasonal OfferType = "seasonal"
)

type NotificationStatus string

const (
	NotificationScheduled NotificationStatus = "scheduled"
	NotificationSent      NotificationStatus = "sent"
	NotificationFailed    NotificationStatus = "failed"
	NotificationCancelled NotificationStatus = "cancelled"
)

type NotificationChannel string

const (
	ChannelPush  NotificationChannel = "push"
	ChannelSMS   NotificationChannel = "sms"
	ChannelEmail NotificationChannel = "email"
	ChannelInApp NotificationChannel = "in_app"
)

type AttemptStatus string

const (
	AttemptSent   AttemptStatus = "sent"
	AttemptFailed AttemptStatus = "failed"
)

type OrderFrequency string

const (
	FrequencyLow    OrderFrequency = "low"
	FrequencyMedium OrderFrequency = "medium"
	FrequencyHigh   OrderFrequency = "high"
)

type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "bronze"
	TierSilver   LoyaltyTier = "silver"
	TierGold     LoyaltyTier = "gold"
	TierPlatinum LoyaltyTier = "platinum"
)

type TaskType string

const (
	TaskNotificationDispatch   TaskType = "notification_dispatch"
	TaskPersonalizationRefresh TaskType = "personalization_refresh"
	TaskLogCleanup             TaskType = "log_cleanup"
	TaskMenuScheduleValidation TaskType = "menu_schedule_validation"
)
