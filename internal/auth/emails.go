package auth

import "fmt"

const (
	verifySubject = "Conferma il tuo indirizzo email"
	resetSubject  = "Reimposta la tua password"
)

func verifyBody(baseURL, token string) string {
	link := fmt.Sprintf("%s/api/auth/verify?token=%s", baseURL, token)
	return fmt.Sprintf(`<p>Benvenuto su Agri KM Zero!</p>
<p>Conferma il tuo indirizzo email cliccando sul link qui sotto:</p>
<p><a href="%s">%s</a></p>
<p>Se non hai richiesto questa registrazione puoi ignorare questa email.</p>`, link, link)
}

func resetBody(baseURL, token string) string {
	link := fmt.Sprintf("%s/reset-password?token=%s", baseURL, token)
	return fmt.Sprintf(`<p>Hai richiesto di reimpostare la tua password su Agri KM Zero.</p>
<p>Clicca sul link qui sotto per scegliere una nuova password. Il link scade tra un'ora.</p>
<p><a href="%s">%s</a></p>
<p>Se non hai richiesto il reset puoi ignorare questa email.</p>`, link, link)
}
