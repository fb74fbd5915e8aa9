package chat

import (
	"strings"

	"github.com/angelmondragon/greengrocer-web/internal/auth"
)

// QuickAction is a suggestion chip; choosing it sends Message.
type QuickAction struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

// QuickActions suggests follow-ups based on the last bot message, falling back
// to the general shortcuts.
func QuickActions(messages []Message, authenticated bool) []QuickAction {
	var actions []QuickAction
	if n := len(messages); n > 0 && messages[n-1].Type == SenderBot {
		last := messages[n-1]
		if len(last.Products) > 0 {
			actions = append(actions,
				QuickAction{Label: "Tìm sản phẩm khác", Message: "Tôi muốn tìm sản phẩm khác"},
				QuickAction{Label: "Sản phẩm giá rẻ", Message: "Tôi muốn xem sản phẩm giá rẻ"},
			)
		}
		if len(last.Orders) > 0 {
			actions = append(actions, QuickAction{Label: "Theo dõi đơn hàng", Message: "Tôi muốn theo dõi đơn hàng"})
		}
	}
	if len(actions) > 0 {
		return actions
	}

	actions = append(actions, QuickAction{Label: "Xem sản phẩm", Message: "Tôi muốn xem sản phẩm"})
	if authenticated {
		actions = append(actions, QuickAction{Label: "Đơn hàng của tôi", Message: "Tôi muốn xem đơn hàng của tôi"})
	}
	return append(actions, QuickAction{Label: "Hỗ trợ thanh toán", Message: "Tôi cần hỗ trợ về thanh toán"})
}

// WidgetVisible reports whether the floating chat button shows on path.
func WidgetVisible(path string, state auth.State) bool {
	if strings.HasPrefix(path, "/admin") || strings.HasPrefix(path, "/auth") {
		return false
	}
	return !state.IsLoading && state.IsAuthenticated
}
