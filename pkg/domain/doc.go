/*
Package domain contains the core domain models of the Waypoint journey engine.

It defines the declarative branching model (Conditions and Next targets), the
journey log (HistoryEntry) and the per-step configuration consumed by the
progress guard. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Condition: a predicate over session fields plus the branch it selects.
  - Next: where a step goes after completion (a path, a function, or nested Conditions).
  - HistoryEntry: one visited step in the journey log.
  - StepConfig: admission and branching configuration of a single step.
  - Session: the persisted snapshot of field values and journey history.
*/
package domain
