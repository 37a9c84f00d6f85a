package resalesdk

// ============================================================================
// Account Types
// ============================================================================

// LoginRequest is the body of POST /account/login/.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is the credential pair returned by login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Detail  string `json:"detail,omitempty"`
}

// SignupRequest is the body of POST /account/signup/.
type SignupRequest struct {
	Username        string `json:"username"         validate:"required"`
	Email           string `json:"email"            validate:"required,simpleemail"`
	Password        string `json:"password"         validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// SignupResponse is the 201 body of signup. Deployments that log the user
// straight in also return a credential pair.
type SignupResponse struct {
	Detail  string `json:"detail"`
	Access  string `json:"access,omitempty"`
	Refresh string `json:"refresh,omitempty"`
}

// Profile is the current user as returned by GET /account/user-profile/.
type Profile struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	DateJoined string `json:"date_joined"`
}

// UpdateProfileRequest is the body of PUT /account/update-profile/.
// Password is the user's current password, required to confirm the change.
type UpdateProfileRequest struct {
	Username string `json:"username,omitempty" validate:"required_without=Email"`
	Email    string `json:"email,omitempty"    validate:"omitempty,simpleemail"`
	Password string `json:"password"           validate:"required"`
}

// UpdateProfileResponse echoes the stored values after an update.
type UpdateProfileResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ForgotPasswordRequest is the body of POST /account/forgot-password/.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,simpleemail"`
}

// ResetPasswordRequest is the body of POST /account/reset-password/.
type ResetPasswordRequest struct {
	Token              string `json:"token"                validate:"required"`
	NewPassword        string `json:"new_password"         validate:"required,min=8"`
	ConfirmNewPassword string `json:"confirm_new_password" validate:"required,eqfield=NewPassword"`
}

// DetailResponse is the {"detail": "..."} acknowledgement most account
// endpoints answer with.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// ============================================================================
// Resale Types
// ============================================================================

// AnalysisType selects the aggregation performed by the analysis endpoint.
type AnalysisType string

const (
	AnalysisPriceTrends AnalysisType = "price_trends"
	AnalysisVolatility  AnalysisType = "volatility"
)

// Interval is the bucket size of the comparison graph.
type Interval string

const (
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// AnalysisQuery parameters for GET /resale/resale_analysis/.
type AnalysisQuery struct {
	Towns     []string     `json:"towns"      validate:"min=1,dive,required"`
	Type      AnalysisType `json:"type"       validate:"omitempty,oneof=price_trends volatility"`
	StartYear int          `json:"start_year" validate:"omitempty,gte=1990"`
	EndYear   int          `json:"end_year"   validate:"omitempty,gtefield=StartYear"`
	RoomType  string       `json:"room_type"`
}

// AnalysisPoint is one aggregated value. Town is set when the analysis is
// grouped per town (a room type filter was given, or volatility); FlatType
// otherwise. ResalePrice holds the mean for price trends and the standard
// deviation for volatility.
type AnalysisPoint struct {
	Town        string  `json:"town,omitempty"`
	FlatType    string  `json:"flat_type,omitempty"`
	Year        int     `json:"year"`
	ResalePrice float64 `json:"resale_price"`
}

// TrendsQuery parameters for GET /resale/resale_roomtype_trends/. The
// year range only applies when both ends are set.
type TrendsQuery struct {
	Town      string `json:"town"       validate:"required"`
	StartYear int    `json:"start_year" validate:"omitempty,gte=1990"`
	EndYear   int    `json:"end_year"   validate:"omitempty,gtefield=StartYear"`
}

// RoomTypeTrend is the average price of one flat type in one year.
type RoomTypeTrend struct {
	Year     int     `json:"year"`
	FlatType string  `json:"flat_type"`
	AvgPrice float64 `json:"avg_price"`
}

// ComparisonQuery parameters for the comparison endpoints. Start and End
// are months formatted YYYY-MM.
type ComparisonQuery struct {
	Towns    []string `json:"towns"    validate:"min=1,max=5,dive,required"`
	Start    string   `json:"start"    validate:"required,yearmonth"`
	End      string   `json:"end"      validate:"required,yearmonth"`
	Interval Interval `json:"interval" validate:"omitempty,oneof=month year"`
}

// TownAverage is the average price of a town over the compared period.
type TownAverage struct {
	Town     string  `json:"town"`
	AvgPrice float64 `json:"avg_price"`
}

// GraphPoint is one bucket of the comparison graph. Date is "YYYY" or
// "YYYY-MM" depending on the interval.
type GraphPoint struct {
	Date     string  `json:"date"`
	Town     string  `json:"town"`
	AvgPrice float64 `json:"avg_price"`
}

// ListingsQuery parameters for GET /resale/raw_data_by_town/.
type ListingsQuery struct {
	Town     string `json:"town"      validate:"required"`
	RoomType string `json:"room_type"`
}

// Listing is a single resale transaction.
type Listing struct {
	Month             string  `json:"month"`
	Town              string  `json:"town"`
	FlatType          string  `json:"flat_type"`
	Block             string  `json:"block"`
	StreetName        string  `json:"street_name"`
	StoreyRange       string  `json:"storey_range"`
	FloorAreaSqm      float64 `json:"floor_area_sqm"`
	FlatModel         string  `json:"flat_model"`
	LeaseCommenceDate int     `json:"lease_commence_date"`
	RemainingLease    string  `json:"remaining_lease"`
	ResalePrice       float64 `json:"resale_price"`
}

// Prediction is the model output for one town.
type Prediction struct {
	Town        string           `json:"town"`
	FlatType    string           `json:"flat_type,omitempty"`
	Predictions []PredictedPrice `json:"predictions"`
}

// PredictedPrice is the forecast for one future year.
type PredictedPrice struct {
	Year           int     `json:"year"`
	PredictedPrice float64 `json:"predicted_price"`
}
