package dto

/**
  {
      "id": 1,
      "username": "trader42",
      "email": "trader42@example.com",
      "deriv_account": "CR90210",
      "balance": "120.50",
      "default_currency": "USD"
  }
*/

type User struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	DerivAccount    string `json:"deriv_account"`
	Balance         string `json:"balance"`
	DefaultCurrency string `json:"default_currency"`
}
