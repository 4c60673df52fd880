// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

// Kind groups codes by how a caller is expected to react.
type Kind string

const (
	// KindNone is reported for a nil error.
	KindNone Kind = ""
	// KindValidation marks bad input that the caller can correct and retry.
	KindValidation Kind = "validation"
	// KindNotFound marks a lookup miss.
	KindNotFound Kind = "not_found"
	// KindConflict marks a scheduling overlap or uniqueness clash.
	KindConflict Kind = "conflict"
	// KindState marks an operation the current object state does not allow.
	KindState Kind = "state"
	// KindStorage marks a store that could not be read or written.
	KindStorage Kind = "storage"
	// KindInternal marks anything unclassified.
	KindInternal Kind = "internal"
)

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Camp errors
	CodeCampNameRequired  Code = "CAMP_NAME_REQUIRED"
	CodeCampInvalidType   Code = "CAMP_INVALID_TYPE"
	CodeCampInvalidNights Code = "CAMP_INVALID_NIGHTS"
	CodeCampInvalidDate   Code = "CAMP_INVALID_DATE"
	CodeCampInvalidRange  Code = "CAMP_INVALID_RANGE"
	CodeCampExists        Code = "CAMP_EXISTS"
	CodeCampNotFound      Code = "CAMP_NOT_FOUND"

	// Resource errors
	CodeInvalidAmount    Code = "INVALID_AMOUNT"
	CodeInsufficientFood Code = "INSUFFICIENT_FOOD"

	// Camp log errors
	CodeEmptyDescription Code = "EMPTY_DESCRIPTION"
	CodeActivityRequired Code = "ACTIVITY_NAME_REQUIRED"
	CodeDateOutsideCamp  Code = "DATE_OUTSIDE_CAMP"
	CodeEntryNotFound    Code = "ENTRY_NOT_FOUND"
	CodeCamperRequired   Code = "CAMPER_REQUIRED"
	CodeLeaderRequired   Code = "LEADER_REQUIRED"

	// Scheduling errors
	CodeInvalidIndex     Code = "SCHEDULE_INVALID_INDEX"
	CodeInternalOverlap  Code = "SCHEDULE_INTERNAL_OVERLAP"
	CodeScheduleConflict Code = "SCHEDULE_CONFLICT"

	// Notification and messaging errors
	CodeMessageRequired    Code = "MESSAGE_REQUIRED"
	CodeUserRequired       Code = "USER_REQUIRED"
	CodeRecipientRequired  Code = "RECIPIENT_REQUIRED"
	CodeInvalidMuteMinutes Code = "INVALID_MUTE_MINUTES"
	CodeCategoryRequired   Code = "CATEGORY_REQUIRED"
	CodeMessageNotFound    Code = "MESSAGE_NOT_FOUND"
	CodeInvalidFilter      Code = "INVALID_FILTER"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorageFailure Code = "STORAGE_FAILURE"
)

// Kind maps domain codes to their failure category.
func (c Code) Kind() Kind {
	switch c {
	// Validation - bad input, re-prompt the user
	case CodeCampNameRequired,
		CodeCampInvalidType,
		CodeCampInvalidNights,
		CodeCampInvalidDate,
		CodeCampInvalidRange,
		CodeInvalidAmount,
		CodeEmptyDescription,
		CodeActivityRequired,
		CodeDateOutsideCamp,
		CodeCamperRequired,
		CodeLeaderRequired,
		CodeInvalidIndex,
		CodeMessageRequired,
		CodeUserRequired,
		CodeRecipientRequired,
		CodeInvalidMuteMinutes,
		CodeCategoryRequired,
		CodeInvalidFilter:
		return KindValidation

	// NotFound - lookup miss
	case CodeNotFound,
		CodeCampNotFound,
		CodeMessageNotFound:
		return KindNotFound

	// Conflict - overlap or uniqueness
	case CodeCampExists,
		CodeInternalOverlap,
		CodeScheduleConflict:
		return KindConflict

	// State - the object does not allow the operation
	case CodeEntryNotFound,
		CodeInsufficientFood:
		return KindState

	case CodeStorageFailure:
		return KindStorage

	default:
		return KindInternal
	}
}
