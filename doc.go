/*
Package regtrain trains a single-feature linear regression model from a CSV file,
records the run in a tracking store, and sends an email alert when training fails.

It is deliberately thin: the fit is ordinary least squares, the metric is the mean
squared error on the fitting data, and every run is appended to a tracking store
(a local SQLite file by default). The only decision boundary is failure handling.

# Failure handling

Run wraps one training call in a guard. On error it prints the full error trace to
standard output, hands the trace to a best-effort Notifier (the email Alerter), and
returns the original error unchanged so the calling process exits non-zero.

A notification failure never replaces the training error: it is logged and dropped.

# Usage

	store, err := tracking.Open("sqlite:///mlflow.db")
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	t := trainer.New(trainer.Config{DatasetPath: "data/dataset.csv"}, store, file.New("mlruns"))
	if _, err := regtrain.Run(ctx, t, regtrain.WithNotifier(alert.New())); err != nil {
		os.Exit(1)
	}
*/
package regtrain
