package emailer

import (
	"log"
	"net/smtp"
	"os"
)

// Mail is delivered fire-and-forget: a failed notification must never be
// confused with a failed core operation, so senders run in a goroutine and
// only log errors.

func smtpConfig() (host, port, from, pass string) {
	host = os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port = os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from = os.Getenv("SMTP_FROM")
	pass = os.Getenv("SMTP_PASS")
	return
}

func Send(toEmail, subject, body string) error {
	host, port, from, pass := smtpConfig()
	msg := []byte("Subject: " + subject + "\nMIME-version: 1.0;\nContent-Type: text/html;\n\n" + body)
	auth := smtp.PlainAuth("", from, pass, host)
	return smtp.SendMail(host+":"+port, auth, from, []string{toEmail}, msg)
}

// Notify queues a mail after the surrounding operation has committed.
func Notify(toEmail, subject, body string) {
	go func() {
		if err := Send(toEmail, subject, body); err != nil {
			log.Printf("emailer: send to %s failed: %v", toEmail, err)
		}
	}()
}

func SendOTP(toEmail, otp string) error {
	return Send(toEmail, "Email Verification", "Your AgroTech OTP is: <b>"+otp+"</b>")
}

func NotifyWelcome(toEmail, username string) {
	Notify(toEmail, "Welcome to AgroTech", "Hello "+username+", your account is ready.")
}

func NotifyAccountDeleted(toEmail string) {
	Notify(toEmail, "Account removed", "Your AgroTech account has been removed by an administrator.")
}

func NotifyOrderStatus(toEmail, orderID, status string) {
	Notify(toEmail, "Order "+orderID+" update", "Your order <b>"+orderID+"</b> is now <b>"+status+"</b>.")
}
