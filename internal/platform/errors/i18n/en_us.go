package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeCampNameRequired   = "CAMP_NAME_REQUIRED"
	CodeCampInvalidType    = "CAMP_INVALID_TYPE"
	CodeCampInvalidNights  = "CAMP_INVALID_NIGHTS"
	CodeCampInvalidDate    = "CAMP_INVALID_DATE"
	CodeCampInvalidRange   = "CAMP_INVALID_RANGE"
	CodeCampExists         = "CAMP_EXISTS"
	CodeCampNotFound       = "CAMP_NOT_FOUND"
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeInsufficientFood   = "INSUFFICIENT_FOOD"
	CodeEmptyDescription   = "EMPTY_DESCRIPTION"
	CodeActivityRequired   = "ACTIVITY_NAME_REQUIRED"
	CodeDateOutsideCamp    = "DATE_OUTSIDE_CAMP"
	CodeEntryNotFound      = "ENTRY_NOT_FOUND"
	CodeCamperRequired     = "CAMPER_REQUIRED"
	CodeLeaderRequired     = "LEADER_REQUIRED"
	CodeInvalidIndex       = "SCHEDULE_INVALID_INDEX"
	CodeInternalOverlap    = "SCHEDULE_INTERNAL_OVERLAP"
	CodeScheduleConflict   = "SCHEDULE_CONFLICT"
	CodeMessageRequired    = "MESSAGE_REQUIRED"
	CodeUserRequired       = "USER_REQUIRED"
	CodeRecipientRequired  = "RECIPIENT_REQUIRED"
	CodeInvalidMuteMinutes = "INVALID_MUTE_MINUTES"
	CodeCategoryRequired   = "CATEGORY_REQUIRED"
	CodeMessageNotFound    = "MESSAGE_NOT_FOUND"
	CodeInvalidFilter      = "INVALID_FILTER"
	CodeNotFound           = "NOT_FOUND"
	CodeStorageFailure     = "STORAGE_FAILURE"
)

var enUSMessages = map[Code]string{
	CodeCampNameRequired:   "A camp name is required.",
	CodeCampInvalidType:    "Camp type {{.Type}} is not one of Day, Overnight or Multi-day.",
	CodeCampInvalidNights:  "Nights {{.Nights}} do not fit the camp type; multi-day camps last 2 to 365 nights.",
	CodeCampInvalidDate:    "Date {{.Date}} is not in YYYY-MM-DD form.",
	CodeCampInvalidRange:   "Camp {{.Camp}} ends before it starts.",
	CodeCampExists:         "A camp named {{.Camp}} already exists.",
	CodeCampNotFound:       "Camp {{.Camp}} was not found.",
	CodeInvalidAmount:      "{{.Field}} must be a non-negative whole number.",
	CodeInsufficientFood:   "Camp {{.Camp}} has only {{.Stock}} food units left; {{.Requested}} requested.",
	CodeEmptyDescription:   "An incident needs a description.",
	CodeActivityRequired:   "An activity needs a name.",
	CodeDateOutsideCamp:    "{{.Date}} is outside the dates of camp {{.Camp}}.",
	CodeEntryNotFound:      "That entry no longer exists in camp {{.Camp}}.",
	CodeCamperRequired:     "At least one camper is required.",
	CodeLeaderRequired:     "A scout leader is required.",
	CodeInvalidIndex:       "Camp selection {{.Index}} is out of range.",
	CodeInternalOverlap:    "The selected camps overlap each other: {{.Pairs}}.",
	CodeScheduleConflict:   "The selected camps overlap existing assignments of {{.Leader}}: {{.Pairs}}.",
	CodeMessageRequired:    "Message text is required.",
	CodeUserRequired:       "A user is required.",
	CodeRecipientRequired:  "At least one recipient is required.",
	CodeInvalidMuteMinutes: "Mute duration must be a positive number of minutes.",
	CodeCategoryRequired:   "A notification category is required.",
	CodeMessageNotFound:    "No matching message was found.",
	CodeInvalidFilter:      "The filter could not be understood: {{.Reason}}.",
	CodeNotFound:           "The requested record was not found.",
	CodeStorageFailure:     "Saved data could not be read or written. Your last change was not applied.",
}
