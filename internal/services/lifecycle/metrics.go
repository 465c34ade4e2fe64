package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	autoUpgrades = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifecycle_auto_upgrades_total",
		Help: "Количество автоматических переводов подписки с пробного плана на премиум.",
	})
	autoUpgradeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifecycle_auto_upgrade_failures_total",
		Help: "Количество неудачных попыток сохранить автоперевод подписки.",
	})
)
