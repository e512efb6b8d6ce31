package tables

import (
	"time"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
	"github.com/itbpos/restaurant-backend/pkg/enums"
)

// TableView is the API-facing shape of a table.
type TableView struct {
	ID          uuid.UUID         `json:"id"`
	BranchID    uuid.UUID         `json:"branchId"`
	BranchCode  string            `json:"branchCode,omitempty"`
	TableNumber string            `json:"tableNumber"`
	Section     *string           `json:"section,omitempty"`
	Capacity    int               `json:"capacity"`
	Status      enums.TableStatus `json:"status"`
	Occupied    bool              `json:"occupied"`
	OrderRef    string            `json:"orderRef,omitempty"`
}

// AvailableTablesResult carries the cached availability list.
type AvailableTablesResult struct {
	BranchID  uuid.UUID   `json:"branchId"`
	Tables    []TableView `json:"tables"`
	FetchedAt time.Time   `json:"fetchedAt"`
	FromCache bool        `json:"-"`
}

func newTableView(table models.POSTable, openOrder *models.POSOrder) TableView {
	view := TableView{
		ID:          table.ID,
		BranchID:    table.BranchID,
		TableNumber: table.TableNumber,
		Section:     table.Section,
		Capacity:    table.Capacity,
		Status:      table.Status,
	}
	if table.Branch != nil {
		view.BranchCode = table.Branch.Code
	}
	if openOrder != nil {
		view.Occupied = true
		view.OrderRef = openOrder.OrderID
	}
	return view
}
