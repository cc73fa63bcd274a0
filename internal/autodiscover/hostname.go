package autodiscover

import (
	"fmt"
	"os"
	"strings"
)

// localDomain derives a mail domain from the local machine's fully qualified
// hostname. Useful on domain-joined machines where the mail domain matches.
func localDomain() (string, error) {
	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("getting hostname: %w", err)
	}

	_, domain, ok := strings.Cut(host, ".")
	if !ok || domain == "" {
		return "", fmt.Errorf("hostname %q carries no domain", host)
	}

	return domain, nil
}

func mailboxDomain(mailbox string) string {
	_, domain, _ := strings.Cut(mailbox, "@")
	return domain
}
