package loader

import "strings"

// Diagnose scans the captured loader output for known failure signatures and
// returns a likely-cause suggestion, or "" when nothing matches.
func Diagnose(logs string) string {
	lower := strings.ToLower(logs)
	switch {
	case strings.Contains(logs, "Access denied") || strings.Contains(lower, "authentication"):
		return "Likely cause: MySQL authentication failed inside Docker.\n" +
			"    • Check credentials in the config file\n" +
			"    • Ensure the MySQL user can connect from the Docker network\n" +
			"    • Grant access: GRANT ALL ON db.* TO 'user'@'%';"
	case strings.Contains(lower, "could not connect") || strings.Contains(lower, "connection refused"):
		return "Likely cause: the loader cannot reach MySQL from inside Docker.\n" +
			"    • Firewall: sudo ufw allow from 172.16.0.0/12 to any port 3306\n" +
			"    • MySQL bind-address: set bind-address = 0.0.0.0\n" +
			"    • Restart MySQL: sudo systemctl restart mysql"
	case strings.Contains(logs, "No such file"):
		return "Likely cause: the loader config file was not mounted correctly.\n" +
			"    • Expected at: " + OutputFile + "\n" +
			"    • Check that the pgloader/ directory exists"
	}
	return ""
}
