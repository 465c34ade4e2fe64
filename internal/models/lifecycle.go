package models

// LifecycleState производное состояние жизненного цикла аккаунта владельца.
// Вычисляется резолвером из записи подписки и текущего момента,
// в хранилище не сохраняется.
type LifecycleState string

const (
	// StateNoSubscription у владельца нет ни одной записи подписки,
	// вызывающая сторона должна предложить принять условия сервиса.
	StateNoSubscription LifecycleState = "no_subscription"
	// StateInTrial действует пробный период бесплатного плана.
	StateInTrial LifecycleState = "in_trial"
	// StateActivePaid платный план действует.
	StateActivePaid LifecycleState = "active_paid"
	// StateExpiredBlocked подписка истекла, доступ к кабинету заблокирован.
	StateExpiredBlocked LifecycleState = "expired_blocked"
	// StateCancelledPendingReactivation подписка отменена,
	// владельцу предлагается реактивация с погашением долга.
	StateCancelledPendingReactivation LifecycleState = "cancelled_pending_reactivation"
)
