package layout

import "github.com/Norgate-AV/htauto/internal/windows"

// Fixed identifiers of the client (网上股票交易系统 5.0, xiadan.exe). They must
// match the installed version literally.
const (
	LoginDialogTitle = "用户登录"

	MainWindowClass = "AfxFrameOrView42s"
	MainWindowTitle = "网上股票交易系统5.0"

	SubmitButtonLabel = "确定(&Y)"

	SafetyInfoEncryptLabel = "核新加密"
	SafetyInfoTitle        = "安全信息及设置"

	AnnouncementButtonLabel = "确定"
	AnnouncementTitle       = "营业部公告"
)

// Step names of the login dialog pattern.
const (
	FieldUserIDBox     = "user id box"
	FieldUserID        = "user id"
	FieldTradePassword = "trade password"
	FieldCommPassword  = "comm password"
	FieldSubmit        = "submit"
)

// LoginFields locates the credential inputs and the submit button of the login dialog.
var LoginFields = Pattern{
	Name: "login dialog",
	Steps: []Constraint{
		{Name: FieldUserIDBox, Class: windows.ClassComboBox},
		{Name: FieldUserID, Class: windows.ClassEdit, Within: true},
		{Name: FieldTradePassword, Class: windows.ClassEdit},
		{Name: FieldCommPassword, Class: windows.ClassEdit},
		{Name: FieldSubmit, Class: windows.ClassButton, Title: SubmitButtonLabel},
	},
}

// SafetyInfoDialog is the "security information and settings" pop-up shown after login.
var SafetyInfoDialog = Pattern{
	Name: "safety info dialog",
	Steps: []Constraint{
		{Name: "encryption box", Class: windows.ClassComboBox, Text: SafetyInfoEncryptLabel},
		{Name: "close button", Class: windows.ClassButton},
		{Name: "title", Class: windows.ClassStatic, Text: SafetyInfoTitle},
	},
}

// AnnouncementDialog is the branch office announcement pop-up shown after login.
var AnnouncementDialog = Pattern{
	Name: "announcement dialog",
	Steps: []Constraint{
		{Name: "confirm button", Class: windows.ClassButton, Title: AnnouncementButtonLabel},
		{Name: "title", Class: windows.ClassStatic, Text: AnnouncementTitle},
	},
}

// NuisanceDialogs are closed after login, checked in this order.
var NuisanceDialogs = []Pattern{SafetyInfoDialog, AnnouncementDialog}
