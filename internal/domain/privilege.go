package domain

const (
	PrivilegeBronze = "BRONZE"
	PrivilegeSilver = "SILVER"
	PrivilegeGold   = "GOLD"
)

type Privilege struct {
	Balance int                `json:"balance"`
	Status  string             `json:"status"`
	History []BalanceOperation `json:"history"`
}

type BalanceOperation struct {
	Date          string `json:"date"`
	TicketUID     string `json:"ticketUid"`
	BalanceDiff   int    `json:"balanceDiff"`
	OperationType string `json:"operationType"` // FILL_IN_BALANCE | DEBIT_THE_ACCOUNT | FILLED_BY_MONEY
}

// PrivilegeShort hides the accrual history from composed responses.
type PrivilegeShort struct {
	Balance int    `json:"balance"`
	Status  string `json:"status"`
}

func (p Privilege) Short() PrivilegeShort {
	return PrivilegeShort{Balance: p.Balance, Status: p.Status}
}

// TicketInfo registers a purchase with the bonus backend.
type TicketInfo struct {
	Price           int    `json:"price"`
	PaidFromBalance bool   `json:"paidFromBalance"`
	TicketUID       string `json:"ticketUid"`
	Date            string `json:"date"`
}

// PurchaseInfo is the bonus backend's money/bonus split; forwarded unmodified.
type PurchaseInfo struct {
	PaidByMoney   int `json:"paidByMoney"`
	PaidByBonuses int `json:"paidByBonuses"`
}
