package entity

// ToastLevel is the severity of a toast.
type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastInfo    ToastLevel = "info"
	ToastWarning ToastLevel = "warning"
	ToastError   ToastLevel = "error"
)

// Toast is a transient user-facing notice.
type Toast struct {
	ID      int64      `json:"id,string"`
	Level   ToastLevel `json:"level"`
	Message string     `json:"message"`
}
