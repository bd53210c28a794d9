// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// ConfirmEmailData holds data for the sign-up confirmation email.
type ConfirmEmailData struct {
	SiteName string
	Nickname string
	Link     string
}

// BuildConfirmEmail creates the account confirmation email.
func BuildConfirmEmail(data ConfirmEmailData) Email {
	var text bytes.Buffer
	fmt.Fprintf(&text, "Hi %s,\n\n", data.Nickname)
	fmt.Fprintf(&text, "Click the link below to finish signing up for %s:\n", data.SiteName)
	text.WriteString(data.Link + "\n\n")
	text.WriteString("If you did not sign up, you can safely ignore this email.\n")

	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("%s, confirm your email", data.SiteName),
		TextBody: text.String(),
		HTMLBody: render(confirmHTML, data),
	}
}

// StudyNoticeData holds data for study created/updated notifications.
type StudyNoticeData struct {
	SiteName   string
	Nickname   string
	StudyTitle string
	Message    string
	Link       string
}

// BuildStudyNotice creates a notification about a study.
func BuildStudyNotice(data StudyNoticeData) Email {
	var text bytes.Buffer
	fmt.Fprintf(&text, "Hi %s,\n\n", data.Nickname)
	fmt.Fprintf(&text, "%s\n\n", data.Message)
	fmt.Fprintf(&text, "%s\n%s\n", data.StudyTitle, data.Link)

	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("[%s] %s", data.SiteName, data.StudyTitle),
		TextBody: text.String(),
		HTMLBody: render(studyNoticeHTML, data),
	}
}

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

var confirmHTML = template.Must(template.New("confirm").Parse(layoutStart + `
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Hi {{.Nickname}},</p>
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Click the button below to finish signing up for {{.SiteName}}.
              </p>
              <p style="text-align: center;">
                <a href="{{.Link}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; border-radius: 6px;">Confirm email</a>
              </p>` + layoutEnd))

var studyNoticeHTML = template.Must(template.New("study-notice").Parse(layoutStart + `
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Hi {{.Nickname}},</p>
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">{{.Message}}</p>
              <p style="text-align: center;">
                <a href="{{.Link}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; border-radius: 6px;">{{.StudyTitle}}</a>
              </p>` + layoutEnd))

const layoutStart = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">`

const layoutEnd = `
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
