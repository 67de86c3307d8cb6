package app

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// notifyTimeLayout matches the dd/MM/yyyy HH:mm:ss format used across all
// operator notifications.
const notifyTimeLayout = "02/01/2006 15:04:05"

// BalanceInfo is what could be extracted from a raw USSD balance response.
// Nil fields mean the fragment was absent or unparseable.
type BalanceInfo struct {
	PhoneNumber *string
	Carrier     *string
	Balance     *int64
}

var (
	balancePhoneRe   = regexp.MustCompile(`So TB (\d+)`)
	balanceAmountRe  = regexp.MustCompile(`TK chinh=(\d+) VND`)
	balanceCarrierRe = regexp.MustCompile(`\((\w+)\)`)
)

// ParseBalanceResponse extracts phone number, carrier tag and main balance
// from a raw USSD response such as
// "So TB 0858122773 (VINA690). TK chinh=184813 VND, HSD 12/12/2025".
func ParseBalanceResponse(response string) BalanceInfo {
	var info BalanceInfo
	if m := balancePhoneRe.FindStringSubmatch(response); m != nil {
		info.PhoneNumber = &m[1]
	}
	if m := balanceAmountRe.FindStringSubmatch(response); m != nil {
		if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			info.Balance = &v
		}
	}
	if m := balanceCarrierRe.FindStringSubmatch(response); m != nil {
		info.Carrier = &m[1]
	}
	return info
}

// LowBalance reports whether the parsed balance is below threshold. An
// unparsed balance is never treated as low.
func (b BalanceInfo) LowBalance(threshold int64) bool {
	return b.Balance != nil && *b.Balance < threshold
}

func buildLowBalanceMessage(info BalanceInfo, now time.Time) string {
	phone := "Unknown"
	if info.PhoneNumber != nil {
		phone = *info.PhoneNumber
	}
	carrier := "Unknown"
	if info.Carrier != nil {
		carrier = *info.Carrier
	}
	var balance int64
	if info.Balance != nil {
		balance = *info.Balance
	}
	return fmt.Sprintf(`🚨 <b>Cảnh báo tài khoản sắp hết tiền</b> 🚨
📱 <b>Phone:</b> <code>%s</code>
📶 <b>Carrier:</b> <code>%s</code>
💰 <b>Số dư:</b> <code>%d VND</code>

🔄 <b>Xin vui lòng nạp thêm tiền để tiếp tục sử dụng tính năng gửi tin nhắn tự động.</b>

⏰ <b>Thời gian:</b> %s`, phone, carrier, balance, now.Format(notifyTimeLayout))
}
