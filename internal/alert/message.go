package alert

import (
	"fmt"

	"github.com/guardline/incident-agent/internal/types"
)

// Email is a fully rendered alert message ready for delivery.
type Email struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Subject renders the alert subject line for an incident.
func Subject(inc types.Incident) string {
	return fmt.Sprintf("Terror Incident Alert: %s at %s", inc.Crime.Label(), inc.Location)
}

func buildHTMLBody(inc types.Incident, timestamp string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Terror Incident Alert</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #dc3545; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0;">
        <h1 style="margin: 0; font-size: 24px;">&#9888;&#65039; Terror Incident Alert</h1>
    </div>
    <div style="background-color: #f8f9fa; padding: 20px; border: 1px solid #dee2e6; border-top: none; border-radius: 0 0 5px 5px;">
        <p style="margin-top: 0;">A terror incident has been reported and requires your attention.</p>
        <table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
            <tr>
                <td style="padding: 10px; border-bottom: 1px solid #dee2e6; font-weight: bold; width: 30%%;">Location:</td>
                <td style="padding: 10px; border-bottom: 1px solid #dee2e6;">%s</td>
            </tr>
            <tr>
                <td style="padding: 10px; border-bottom: 1px solid #dee2e6; font-weight: bold;">Incident Type:</td>
                <td style="padding: 10px; border-bottom: 1px solid #dee2e6;">%s</td>
            </tr>
            <tr>
                <td style="padding: 10px; border-bottom: 1px solid #dee2e6; font-weight: bold;">Timestamp:</td>
                <td style="padding: 10px; border-bottom: 1px solid #dee2e6;">%s</td>
            </tr>
        </table>
        <p style="margin-bottom: 0; font-size: 12px; color: #6c757d;">
            This is an automated alert from the incident agent.
        </p>
    </div>
</body>
</html>`, inc.Location, inc.Crime.Label(), timestamp)
}

func buildTextBody(inc types.Incident, timestamp string) string {
	return fmt.Sprintf(`TERROR INCIDENT ALERT
=====================

A terror incident has been reported and requires your attention.

INCIDENT DETAILS:
-----------------
Location: %s
Incident Type: %s
Timestamp: %s

---
This is an automated alert from the incident agent.`, inc.Location, inc.Crime.Label(), timestamp)
}
