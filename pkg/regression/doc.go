/*
Package regression fits and scores single-feature linear models.

The fit is ordinary least squares delegated to gonum's stat package. Scoring is
done on the same data used for fitting: the pipeline is a smoke test, not a
generalization benchmark.
*/
package regression
