package services

import (
	"fmt"
	"strings"
	"time"
)

const (
	CONFIG_CRONJOB_TIME_BIRTHDAY  = "CRONJOB_TIME_BIRTHDAY"
	CONFIG_BIRTHDAY_TITLE         = "BIRTHDAY_TITLE"
	CONFIG_BIRTHDAY_BODY          = "BIRTHDAY_BODY"
	CONFIG_BIRTHDAY_VOUCHER_VALUE = "BIRTHDAY_VOUCHER_VALUE"
	CONFIG_BIRTHDAY_BONUS_POINTS  = "BIRTHDAY_BONUS_POINTS"

	DEFAULT_CRONJOB_TIME_BIRTHDAY  = "0 9 * * *"
	DEFAULT_BIRTHDAY_TITLE         = "Happy Birthday!"
	DEFAULT_BIRTHDAY_BODY          = "Your birthday voucher is waiting for you at the salon."
	DEFAULT_BIRTHDAY_VOUCHER_VALUE = "10"
	DEFAULT_BIRTHDAY_JOB_TZ        = "Europe/Berlin"

	CACHE_TTL_1_MIN  = 1 * time.Minute
	CACHE_TTL_5_MINS = 5 * time.Minute

	PUSH_BATCH_SIZE = 90

	MAX_TX_ATTEMPTS = 3

	MAX_ACTION_ID_LENGTH = 128

	LEDGER_HISTORY_DEFAULT_LIMIT = 50
	LEDGER_HISTORY_MAX_LIMIT     = 500

	EXPORT_PAGE_SIZE = 500

	CLAIM_RATE_LIMIT_PER_MINUTE         = 10
	ADMIN_FAILURE_RATE_LIMIT_PER_MINUTE = 5

	BIRTHDAY_JOB_LOCK_TTL = 10 * time.Minute

	REASON_VISIT_BOOKED          = "visit booked"
	REASON_REWARD_ACTION_PREFIX  = "reward action confirmed: "
	REASON_BIRTHDAY_BONUS        = "birthday bonus"
	REASON_REDEMPTION_PREFIX     = "reward redeemed: "
	PUSH_DATA_TYPE               = "type"
	PUSH_DATA_TYPE_BIRTHDAY      = "birthday"
	PUSH_DATA_TYPE_BROADCAST     = "broadcast"
	PUSH_SOUND_DEFAULT           = "default"
	BIRTHDAY_OPERATION_ID_PREFIX = "birthday:"
)

func LockKeyBirthdayJob(date string) string {
	return fmt.Sprintf("lock:birthday-job:%s", date)
}

func DBKeyCustomer(customerID string) string {
	return fmt.Sprintf("customer:%s", customerID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyRewardActions(activeOnly bool) string {
	if activeOnly {
		return "reward_actions:active"
	}
	return "reward_actions:all"
}

func LimitKeyCustomerClaim(customerID string) string {
	return fmt.Sprintf("limit:customer-claim:%s", customerID)
}

func LimitKeyAdminFailure(ip string) string {
	return fmt.Sprintf("limit:admin-failure:%s", ip)
}

func OperationIDBirthday(year int) string {
	return fmt.Sprintf("%s%d", BIRTHDAY_OPERATION_ID_PREFIX, year)
}

func OperationIDRewardAction(actionID string) string {
	return fmt.Sprintf("reward-action:%s", actionID)
}
