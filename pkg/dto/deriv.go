package dto

/**
  {
      "account": {
          "loginid": "CR90210",
          "fullname": "Jane Trader",
          "email": "trader42@example.com",
          "currency": "USD"
      }
  }
*/

type DerivAccountResponse struct {
	Account struct {
		LoginID  string `json:"loginid"`
		FullName string `json:"fullname"`
		Email    string `json:"email"`
		Currency string `json:"currency"`
	} `json:"account"`
}

/**
  {
      "balance": {
          "balance": 120.5,
          "currency": "USD"
      }
  }
*/

type DerivBalanceResponse struct {
	Balance struct {
		Balance  *float64 `json:"balance"`
		Currency string   `json:"currency"`
	} `json:"balance"`
}
