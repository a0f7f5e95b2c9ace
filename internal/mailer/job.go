package mailer

// Email job kinds carried in Pub/Sub message attributes.
const (
	AttrEmailType = "email_type"

	EmailTypeWelcome = "welcome"
	EmailTypeOTP     = "otp"
)

// JobPayload is the wire format of a queued email job.
type JobPayload struct {
	To        string `json:"to"`
	Subject   string `json:"subject"`
	HTMLBody  string `json:"html_body"`
	PlainBody string `json:"plain_body"`
}
