// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Loom is the CLI for provisioning analytics repositories. It creates
// Azure DevOps repositories with a standard branching model (provision),
// links them into Snowflake and Databricks, publishes notebooks and
// Streamlit apps into the warehouse (artifact), and diagnoses the
// local tool environment (doctor).
package main
