package model

// Privilege represents a permission carried in an operator's token
type Privilege struct {
	Code string `json:"code"` // e.g., "receipt:print"
	Name string `json:"name"` // e.g., "Print Receipt"
}

const (
	PrivCatalogManage = "catalog:manage"
	PrivStockAdjust   = "stock:adjust"
	PrivOrderManage   = "order:manage"
	PrivReceiptPrint  = "receipt:print"
	PrivReceiptVoid   = "receipt:void"
	PrivReceiptDelete = "receipt:delete"
	PrivCashManage    = "cash:manage"
	PrivReportView    = "report:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivCatalogManage, Name: "Manage Catalog"},
	{Code: PrivStockAdjust, Name: "Adjust Stock"},
	{Code: PrivOrderManage, Name: "Manage Orders"},
	{Code: PrivReceiptPrint, Name: "Print Receipt"},
	{Code: PrivReceiptVoid, Name: "Void Receipt"},
	{Code: PrivReceiptDelete, Name: "Delete Receipt"},
	{Code: PrivCashManage, Name: "Manage Cash Drawer"},
	{Code: PrivReportView, Name: "View Reports"},
}

// DefaultPrivilegeCodes returns the code of every default privilege.
func DefaultPrivilegeCodes() []string {
	codes := make([]string, len(DefaultPrivileges))
	for i, p := range DefaultPrivileges {
		codes[i] = p.Code
	}
	return codes
}
