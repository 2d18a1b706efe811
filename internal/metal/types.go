package metal

// TokenStatus is the registry-side lifecycle state of a creation job.
// "completed" and "failed" are terminal.
type TokenStatus string

const (
	TokenStatusPending   TokenStatus = "pending"
	TokenStatusCompleted TokenStatus = "completed"
	TokenStatusFailed    TokenStatus = "failed"
)

// Token is the registry's view of a minted (or in-flight) token. Listing
// returns sparse entries; GetToken returns the fully populated form.
type Token struct {
	ID              string      `json:"id,omitempty"`
	Address         string      `json:"address,omitempty"`
	Status          TokenStatus `json:"status,omitempty"`
	Name            string      `json:"name"`
	Symbol          string      `json:"symbol"`
	MerchantAddress string      `json:"merchantAddress,omitempty"`
	OwnerAddress    string      `json:"ownerAddress,omitempty"`

	Price     float64 `json:"price,omitempty"`
	MarketCap float64 `json:"marketCap,omitempty"`
	Holders   int     `json:"holders,omitempty"`
	Volume24h float64 `json:"volume24h,omitempty"`

	TotalSupply    float64 `json:"totalSupply,omitempty"`
	MerchantSupply float64 `json:"merchantSupply,omitempty"`

	// Newer registry responses use the "app supply" names; older ones the
	// "reward supply" names. Both are carried so callers can prefer the
	// app-supply figures when present.
	RemainingAppSupply    float64 `json:"remainingAppSupply,omitempty"`
	StartingAppSupply     float64 `json:"startingAppSupply,omitempty"`
	RemainingRewardSupply float64 `json:"remainingRewardSupply,omitempty"`
	StartingRewardSupply  float64 `json:"startingRewardSupply,omitempty"`
}

// RemainingSupply prefers the app-supply figure over the legacy reward name.
func (t *Token) RemainingSupply() float64 {
	if t.RemainingAppSupply != 0 {
		return t.RemainingAppSupply
	}
	return t.RemainingRewardSupply
}

// StartingSupply prefers the app-supply figure over the legacy reward name.
func (t *Token) StartingSupply() float64 {
	if t.StartingAppSupply != 0 {
		return t.StartingAppSupply
	}
	return t.StartingRewardSupply
}

// TokenList is the response of the list-all-tokens endpoint.
type TokenList struct {
	Tokens []Token `json:"tokens"`
}

// CreateTokenRequest is the payload submitted to mint a new token.
type CreateTokenRequest struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	MerchantAddress string `json:"merchantAddress"`
	CanDistribute   bool   `json:"canDistribute"`
	CanLP           bool   `json:"canLP"`
}

// CreateJob is the registry's acknowledgement of a creation request.
type CreateJob struct {
	ID     string      `json:"id"`
	Status TokenStatus `json:"status,omitempty"`
}

// JobStatus is the polled state of an in-flight creation job.
type JobStatus struct {
	Status TokenStatus `json:"status"`
	Token  *Token      `json:"token,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Wallet is a provisioned custodial holder wallet.
type Wallet struct {
	ID      string `json:"id,omitempty"`
	Address string `json:"address"`
}

// LiquidityResult is the response of the liquidity-provisioning endpoint.
type LiquidityResult struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}
