// Copyright 2026 The LUCI Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package jobs is a documented Go model of the Cloud Dataproc v1 job
// resource.
//
// The model mirrors google.cloud.dataproc.v1 (see package dataprocpb for the
// wire types) for the six classic job variants: Hadoop MapReduce, Spark,
// PySpark, Hive, Pig and Spark SQL. Conversions to and from the wire types
// live in convert.go.
//
// Nothing in this package is enforced by the service client. The Validate*
// functions implement the documented server-side rules so callers can check
// requests before sending them; using them is optional.
//
// HCFS URIs referenced below are Hadoop Compatible File System URIs, e.g.
// "gs://bucket/path", "hdfs:/tmp/file" or "file:///usr/lib/file.jar".
package jobs
