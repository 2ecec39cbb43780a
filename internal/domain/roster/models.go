package roster

const (
	RoleSales           = "sales"
	RoleGTM             = "GTM"
	RoleDirector        = "director"
	RoleFinanceDirector = "finance_director"
)

// Capabilities are the only inputs to permission checks.
type Capabilities struct {
	CanEvaluate     bool `json:"canEvaluate" yaml:"can_evaluate"`
	CanSelfEvaluate bool `json:"canSelfEvaluate" yaml:"can_self_evaluate"`
	CanInputWeekly  bool `json:"canInputWeekly" yaml:"can_input_weekly"`
	CanInputMonthly bool `json:"canInputMonthly" yaml:"can_input_monthly"`
}

// Employee is one roster entry. TOTPSecret may be sealed with the data
// encryption key ("enc:" prefix) and is opened at startup.
type Employee struct {
	ID           int    `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Role         string `json:"role" yaml:"role"`
	Capabilities `yaml:",inline"`
	Email        string `json:"-" yaml:"email"`
	PasswordHash string `json:"-" yaml:"password_hash"`
	TOTPSecret   string `json:"-" yaml:"totp_secret"`
}

func (e Employee) RequiresPassword() bool {
	return e.PasswordHash != ""
}

func (e Employee) RequiresTOTP() bool {
	return e.TOTPSecret != ""
}
