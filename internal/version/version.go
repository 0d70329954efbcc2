package version

var (
	AppName     = "Dooberhut Bot"
	AppFullName = "Dooberhut Bot, music and smoke break reminders for the hut"
	GoVersion   = "1.24"
)
