package wallet

// NotificationKind selects how a notification is presented
type NotificationKind int

const (
	KindSuccess NotificationKind = iota
	KindError
	KindWarning
	KindInfo
)

// String returns the kind name used as an alert key by the views
func (k NotificationKind) String() string {
	switch k {
	case KindSuccess:
		return "Success"
	case KindError:
		return "Error"
	case KindWarning:
		return "Warning"
	default:
		return "Info"
	}
}

// Action is a link the user can follow from a notification
type Action struct {
	Label string
	URL   string
}

// Notification is a user-facing message produced by the controller
type Notification struct {
	Kind        NotificationKind
	Title       string
	Description string
	Action      *Action
}

// Notifier receives notifications. Implementations must not call back into
// the controller synchronously.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notification)

// Notify implements Notifier
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Opener opens a URL in a new browsing context
type Opener func(url string) error

// DefaultInstallURL is where the provider-missing action points
const DefaultInstallURL = "https://metamask.io/download/"

func connectedNotification(a Address) Notification {
	return Notification{
		Kind:        KindSuccess,
		Title:       "Wallet connected successfully",
		Description: "Connected to " + a.Short(),
	}
}

func switchedNotification(a Address) Notification {
	return Notification{
		Kind:        KindSuccess,
		Title:       "Account switched successfully",
		Description: "Now using " + a.Short(),
	}
}

func disconnectedNotification() Notification {
	return Notification{
		Kind:  KindInfo,
		Title: "Wallet disconnected",
	}
}

func providerMissingNotification(installURL string) Notification {
	return Notification{
		Kind:        KindError,
		Title:       "MetaMask not detected",
		Description: "Please install MetaMask to connect your wallet",
		Action: &Action{
			Label: "Install MetaMask",
			URL:   installURL,
		},
	}
}
