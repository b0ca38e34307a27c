package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Entry is one fulfilled order and the account-level truth for both payment dimensions.
type Entry struct {
	ID                      snowflake.ID      `json:"id" gorm:"primaryKey"`
	OrderNumber             string            `json:"order_number" gorm:"type:varchar(255);not null;uniqueIndex:ux_white_glove_order_number"`
	CustomerName            *string           `json:"customer_name,omitempty" gorm:"type:text"`
	CustomerStreetAddress   *string           `json:"customer_street_address,omitempty" gorm:"type:text"`
	CustomerCity            *string           `json:"customer_city,omitempty" gorm:"type:text"`
	CustomerState           *string           `json:"customer_state,omitempty" gorm:"type:text"`
	CustomerCBR             *string           `json:"customer_cbr,omitempty" gorm:"column:customer_cbr;type:text"`
	BAN                     *string           `json:"ban,omitempty" gorm:"column:ban;type:text"`
	OrderStatus             *string           `json:"order_status,omitempty" gorm:"type:text"`
	OrderSubmissionDate     *time.Time        `json:"order_submission_date,omitempty"`
	OriginalDueDate         *time.Time        `json:"original_due_date,omitempty"`
	UpdatedDueDate          *time.Time        `json:"updated_due_date,omitempty"`
	ModifiedDueDate         *time.Time        `json:"modified_due_date,omitempty"`
	OrderCompletedCancelled *string           `json:"order_completed_cancelled,omitempty" gorm:"type:text"`
	PartnerName             *string           `json:"partner_name,omitempty" gorm:"type:text"`
	PartnerSalesCode        *string           `json:"partner_sales_code,omitempty" gorm:"type:text"`
	AuditStatus             *string           `json:"audit_status,omitempty" gorm:"type:text"`
	WhoCancelledTheOrder    *string           `json:"who_cancelled_the_order,omitempty" gorm:"type:text"`
	CancellationReason      *string           `json:"cancellation_reason,omitempty" gorm:"type:text"`
	Notes                   *string           `json:"notes,omitempty" gorm:"type:text"`
	ItemType                *string           `json:"item_type,omitempty" gorm:"type:text"`
	Path                    *string           `json:"path,omitempty" gorm:"type:text"`
	LegacyOrBRSPDFiber      *string           `json:"legacy_or_brspd_fiber,omitempty" gorm:"column:legacy_or_brspd_fiber;type:text"`
	VoiceQty                *int              `json:"voice_qty,omitempty"`
	HSIQty                  *int              `json:"hsi_qty,omitempty" gorm:"column:hsi_qty"`
	InternetSpeed           string            `json:"internet_speed" gorm:"type:text;not null;default:''"`
	AgentSellerInformation  string            `json:"agent_seller_information" gorm:"type:text;not null;default:''"`
	ModifiedMonth           *int              `json:"modified_month,omitempty"`
	MonthIssued             *int              `json:"month_issued,omitempty"`
	YearIssued              *int              `json:"year_issued,omitempty"`
	MonthCompleted          *int              `json:"month_completed,omitempty"`
	YearCompleted           *int              `json:"year_completed,omitempty"`
	MonthDue                *int              `json:"month_due,omitempty"`
	YearDue                 *int              `json:"year_due,omitempty"`
	InstallDate             *time.Time        `json:"install_date,omitempty" gorm:"index"`
	FrontendPaid            bool              `json:"frontend_paid" gorm:"not null;default:false"`
	BackendPaid             bool              `json:"backend_paid" gorm:"not null;default:false;index"`
	Raw                     datatypes.JSONMap `json:"raw,omitempty"`
	CreatedAt               time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt               time.Time         `json:"updated_at" gorm:"not null"`
}

func (Entry) TableName() string { return "white_glove_entries" }

// FeedColumns lists the columns an ingest overwrites; paid flags are never among them.
var FeedColumns = []string{
	"customer_name", "customer_street_address", "customer_city", "customer_state",
	"customer_cbr", "ban", "order_status", "order_submission_date", "original_due_date",
	"updated_due_date", "modified_due_date", "order_completed_cancelled", "partner_name",
	"partner_sales_code", "audit_status", "who_cancelled_the_order", "cancellation_reason",
	"notes", "item_type", "path", "legacy_or_brspd_fiber", "voice_qty", "hsi_qty",
	"internet_speed", "agent_seller_information", "modified_month", "month_issued",
	"year_issued", "month_completed", "year_completed", "month_due", "year_due",
	"install_date", "raw", "updated_at",
}

// PaidColumn returns the paid-flag column for a payment dimension name.
func PaidColumn(dimension string) string {
	if dimension == "backend" {
		return "backend_paid"
	}
	return "frontend_paid"
}
