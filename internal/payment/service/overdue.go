package service

import (
	"time"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/smallbiznis/payrollrecon/internal/payment/domain"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	whiteglovedomain "github.com/smallbiznis/payrollrecon/internal/whiteglove/domain"
)

// accountStatus derives a per-dimension status. Only the backend stage can go overdue.
func accountStatus(dim paymentdomain.Dimension, entry whiteglovedomain.Entry, now time.Time, threshold int) paymentdomain.Status {
	if dim.AccountPaid(entry) {
		return paymentdomain.Status{State: paymentdomain.StatePaid}
	}
	if dim == paymentdomain.DimensionBackend && paymentdomain.IsOverdue(entry.InstallDate, now, threshold) {
		return paymentdomain.Status{
			State:       paymentdomain.StateOverdue,
			OverdueDays: paymentdomain.OverdueDays(*entry.InstallDate, now, threshold),
		}
	}
	return paymentdomain.Status{State: paymentdomain.StateUnpaid}
}

// lineStatus is Paid when the line flag is set, Overdue with the largest
// overdue day count when any unpaid account is overdue, else Unpaid.
func lineStatus(dim paymentdomain.Dimension, line payrolldomain.Line, accounts []paymentdomain.AccountView) paymentdomain.Status {
	if dim.LinePaid(line) {
		return paymentdomain.Status{State: paymentdomain.StatePaid}
	}
	status := paymentdomain.Status{State: paymentdomain.StateUnpaid}
	for _, av := range accounts {
		account := av.Frontend
		if dim == paymentdomain.DimensionBackend {
			account = av.Backend
		}
		if account.State != paymentdomain.StateOverdue {
			continue
		}
		if status.State != paymentdomain.StateOverdue || account.OverdueDays > status.OverdueDays {
			status = account
		}
	}
	return status
}

func (s *Service) lineView(line payrolldomain.Line, accounts map[snowflake.ID]whiteglovedomain.Entry, now time.Time, threshold int) paymentdomain.LineView {
	lv := paymentdomain.LineView{Line: line, Accounts: make([]paymentdomain.AccountView, 0, len(line.Details))}
	seen := map[snowflake.ID]struct{}{}
	for _, d := range line.Details {
		if _, ok := seen[d.WhiteGloveEntryID]; ok {
			continue
		}
		seen[d.WhiteGloveEntryID] = struct{}{}
		entry, ok := accounts[d.WhiteGloveEntryID]
		if !ok {
			continue
		}
		lv.Accounts = append(lv.Accounts, paymentdomain.AccountView{
			Entry:              entry,
			PersonalCommission: d.PersonalCommission,
			Frontend:           accountStatus(paymentdomain.DimensionFrontend, entry, now, threshold),
			Backend:            accountStatus(paymentdomain.DimensionBackend, entry, now, threshold),
		})
	}
	lv.Frontend = lineStatus(paymentdomain.DimensionFrontend, line, lv.Accounts)
	lv.Backend = lineStatus(paymentdomain.DimensionBackend, line, lv.Accounts)
	return lv
}
