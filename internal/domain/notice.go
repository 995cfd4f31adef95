package domain

// Notice is a user-visible, non-fatal outcome of a cart mutation.
type Notice string

const (
	NoticeAddOutOfStock    Notice = "add-out-of-stock"
	NoticeUpdateOutOfStock Notice = "update-out-of-stock"
	NoticeAddFailed        Notice = "add-failed"
	NoticeRemoveFailed     Notice = "remove-failed"
	NoticeUpdateFailed     Notice = "update-failed"
)

var noticeMessages = map[Notice]string{
	NoticeAddOutOfStock:    "Requested quantity is out of stock",
	NoticeUpdateOutOfStock: "Cannot change quantity: requested amount is out of stock",
	NoticeAddFailed:        "Failed to add product",
	NoticeRemoveFailed:     "Failed to remove product",
	NoticeUpdateFailed:     "Failed to change product quantity",
}

func (n Notice) Message() string {
	if msg, ok := noticeMessages[n]; ok {
		return msg
	}
	return string(n)
}
