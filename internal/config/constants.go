package config

// EnvPrefix is the prefix for all environment variable overrides,
// e.g. EDUPULSE_DISTRICT_ID.
const EnvPrefix = "EDUPULSE"

// ExpectedYearCount is the fixed number of school years one run covers.
const ExpectedYearCount = 3

// DefaultDistrictID is the portal identifier of the target district.
// String-typed: the leading zero is significant.
const DefaultDistrictID = "043786"

// DefaultYears are the school years covered when none are configured.
var DefaultYears = []string{"2015-2016", "2016-2017", "2017-2018"}

// DefaultCompletenessWarnPercent is the threshold below which a numeric
// field's completeness is flagged as a warning.
const DefaultCompletenessWarnPercent = 60
