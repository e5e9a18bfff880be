/*
Package alert sends a best-effort email when training fails.

Mail settings are read from the environment at notification time, after merging
a local .env file (variables already present in the environment win):

	EMAIL_HOST  relay host (default smtp.gmail.com)
	EMAIL_PORT  relay port (default 587)
	EMAIL_USER  login and sender address (required)
	EMAIL_PASS  password (required)
	EMAIL_TO    recipient (default EMAIL_USER)

When any required value is missing the Alerter prints a diagnostic and returns
without touching the network.
*/
package alert
