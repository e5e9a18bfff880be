/*
Package domain contains the core domain models for regtrain.

It defines the entities that flow between the dataset loader, the regression fit,
and the tracking store. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Dataset: The normalized (feature, label) rows loaded from a tabular file.
  - Model: A fitted single-feature linear model (intercept + slope).
  - Experiment: A named group of runs in the tracking store.
  - Run: One recorded training execution with its metrics, params and artifacts.
*/
package domain
