package config

const (
	// MaxBatchSize is the per-chunk ceiling for batch operations.
	// Batches larger than this are processed sequentially in chunks of
	// this size; the chunking is reported as a result warning.
	MaxBatchSize = 100

	// MaxTextFieldLength is the maximum length for free-text fields
	// (names, addresses, deletion reasons). Anything beyond this is
	// rejected as TEXT_TOO_LONG.
	MaxTextFieldLength = 5000

	// MaxNameLength is the maximum length for names and other short
	// identifier-like fields, matching VARCHAR(255) columns.
	MaxNameLength = 255

	// MaxTagLength is the maximum length of a single tag.
	MaxTagLength = 100

	// MaxTagsWarningThreshold is the tag count above which validation
	// emits the TOO_MANY_TAGS warning.
	MaxTagsWarningThreshold = 50

	// HighCreditLimitThreshold is the credit limit (in base currency)
	// above which validation emits the HIGH_CREDIT_LIMIT warning.
	HighCreditLimitThreshold = 500_000

	// NegligibleOrdersAmount is the total order volume below which a
	// high-priority client triggers the PRIORITY_HISTORY_MISMATCH
	// warning.
	NegligibleOrdersAmount = 1_000

	// MinPhoneDigits and MaxPhoneDigits bound the significant digit
	// count of an acceptable phone number.
	MinPhoneDigits = 8
	MaxPhoneDigits = 15
)
