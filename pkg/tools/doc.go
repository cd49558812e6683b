// Copyright 2026 © The TopoMind Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools is the execution kernel: the tool registry holding declared
// contracts, schema validation at the input and output boundary of every
// call, and the executor that drives connectors under timeout and retry
// policy. If a tool is not registered here it is not executable, and no
// output enters memory without passing its declared schema.
package tools
