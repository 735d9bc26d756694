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

package jobs

import (
	"time"
)

// VariantKind names a job variant.
type VariantKind string

const (
	KindHadoop   VariantKind = "hadoop"
	KindSpark    VariantKind = "spark"
	KindPySpark  VariantKind = "pyspark"
	KindHive     VariantKind = "hive"
	KindPig      VariantKind = "pig"
	KindSparkSQL VariantKind = "spark-sql"
)

// Kinds lists all supported variant kinds.
func Kinds() []VariantKind {
	return []VariantKind{KindHadoop, KindSpark, KindPySpark, KindHive, KindPig, KindSparkSQL}
}

// Variant is the engine-specific part of a Job.
//
// It is implemented by *HadoopJob, *SparkJob, *PySparkJob, *HiveJob, *PigJob
// and *SparkSQLJob only.
type Variant interface {
	Kind() VariantKind
	isVariant()
}

// LoggingConfig is the runtime logging config of the job.
type LoggingConfig struct {
	// DriverLogLevels maps package names to log levels, e.g.
	// "root" = INFO, "org.apache" = DEBUG, "com.google" = FATAL.
	DriverLogLevels map[string]Level
}

// QueryList is a list of queries to run on a cluster.
type QueryList struct {
	// Queries to execute. A query may contain several semicolon-separated
	// statements.
	Queries []string
}

// HadoopJob runs Apache Hadoop MapReduce jobs on Apache Hadoop YARN.
type HadoopJob struct {
	// MainJarFileURI is the HCFS URI of the jar file containing the main
	// class. Exactly one of MainJarFileURI and MainClass is set.
	MainJarFileURI string
	// MainClass is the name of the driver's main class. The jar file
	// containing it must be in the default CLASSPATH or in JarFileURIs.
	MainClass string
	// Args are the arguments to pass to the driver. Do not include arguments
	// such as -libjars or -Dfoo=bar that can be set as job properties.
	Args []string
	// JarFileURIs are jar file URIs to add to the CLASSPATHs of the Hadoop
	// driver and tasks.
	JarFileURIs []string
	// FileURIs are HCFS URIs of files to copy to the working directory of
	// Hadoop drivers and distributed tasks.
	FileURIs []string
	// ArchiveURIs are HCFS URIs of archives to be extracted in the working
	// directory. Supported file types: .jar, .tar, .tar.gz, .tgz, or .zip.
	ArchiveURIs []string
	// Properties configure Hadoop. Properties that conflict with values set
	// by the service API may be overwritten.
	Properties map[string]string
	// LoggingConfig is the runtime log config for job execution.
	LoggingConfig *LoggingConfig
}

// SparkJob runs Apache Spark applications on YARN.
type SparkJob struct {
	// MainJarFileURI is the HCFS URI of the jar file containing the main
	// class. Exactly one of MainJarFileURI and MainClass is set.
	MainJarFileURI string
	// MainClass is the name of the driver's main class.
	MainClass string
	// Args are the arguments to pass to the driver. Do not include arguments
	// such as --conf that can be set as job properties.
	Args []string
	// JarFileURIs are added to the CLASSPATHs of the driver and tasks.
	JarFileURIs []string
	// FileURIs are placed in the working directory of each executor.
	FileURIs []string
	// ArchiveURIs are extracted into the working directory of each executor.
	ArchiveURIs []string
	// Properties configure Spark.
	Properties map[string]string
	// LoggingConfig is the runtime log config for job execution.
	LoggingConfig *LoggingConfig
}

// PySparkJob runs Apache PySpark applications on YARN.
type PySparkJob struct {
	// MainPythonFileURI is the HCFS URI of the main Python file to use as the
	// driver. Must be a .py file. Required.
	MainPythonFileURI string
	// Args are the arguments to pass to the driver.
	Args []string
	// PythonFileURIs are HCFS file URIs of Python files to pass to the
	// PySpark framework. Supported file types: .py, .egg, and .zip.
	PythonFileURIs []string
	JarFileURIs    []string
	FileURIs       []string
	ArchiveURIs    []string
	Properties     map[string]string
	LoggingConfig  *LoggingConfig
}

// HiveJob runs Apache Hive queries on YARN.
type HiveJob struct {
	// QueryFileURI is the HCFS URI of the script that contains Hive queries.
	// Exactly one of QueryFileURI and QueryList is set.
	QueryFileURI string
	QueryList    *QueryList
	// ContinueOnFailure makes the job continue executing queries if a query
	// fails. Useful when executing independent parallel queries.
	ContinueOnFailure bool
	// ScriptVariables are mapping of query variable names to values
	// (equivalent to the Hive command: SET name="value";).
	ScriptVariables map[string]string
	// Properties are names and values of Hive properties.
	Properties map[string]string
	// JarFileURIs are added to the CLASSPATH of the Hive server and Hadoop
	// MapReduce tasks. Can contain Hive SerDes and UDFs.
	JarFileURIs []string
}

// PigJob runs Apache Pig queries on YARN.
type PigJob struct {
	// QueryFileURI is the HCFS URI of the script that contains the Pig
	// queries. Exactly one of QueryFileURI and QueryList is set.
	QueryFileURI      string
	QueryList         *QueryList
	ContinueOnFailure bool
	ScriptVariables   map[string]string
	Properties        map[string]string
	// JarFileURIs are added to the CLASSPATH of the Pig client and Hadoop
	// MapReduce tasks. Can contain Pig UDFs.
	JarFileURIs   []string
	LoggingConfig *LoggingConfig
}

// SparkSQLJob runs Apache Spark SQL queries.
type SparkSQLJob struct {
	// QueryFileURI is the HCFS URI of the script that contains SQL queries.
	// Exactly one of QueryFileURI and QueryList is set.
	QueryFileURI string
	QueryList    *QueryList
	// ScriptVariables are equivalent to the Spark SQL command:
	// SET name="value";.
	ScriptVariables map[string]string
	Properties      map[string]string
	// JarFileURIs are added to the Spark CLASSPATH.
	JarFileURIs   []string
	LoggingConfig *LoggingConfig
}

func (*HadoopJob) Kind() VariantKind   { return KindHadoop }
func (*SparkJob) Kind() VariantKind    { return KindSpark }
func (*PySparkJob) Kind() VariantKind  { return KindPySpark }
func (*HiveJob) Kind() VariantKind     { return KindHive }
func (*PigJob) Kind() VariantKind      { return KindPig }
func (*SparkSQLJob) Kind() VariantKind { return KindSparkSQL }

func (*HadoopJob) isVariant()   {}
func (*SparkJob) isVariant()    {}
func (*PySparkJob) isVariant()  {}
func (*HiveJob) isVariant()     {}
func (*PigJob) isVariant()      {}
func (*SparkSQLJob) isVariant() {}

// JobPlacement is the cluster selection for a job.
type JobPlacement struct {
	// ClusterName is the name of the cluster where the job will be submitted.
	// Required.
	ClusterName string
	// ClusterUUID is set by the service when the job is submitted.
	ClusterUUID string
	// ClusterLabels select a cluster by labels. Optional.
	ClusterLabels map[string]string
}

// JobStatus is a job status snapshot.
type JobStatus struct {
	// State is set by the service.
	State State
	// Details is optional output-only job state details, such as an error
	// description if the state is ERROR.
	Details string
	// StateStartTime is when this state was entered.
	StateStartTime time.Time
	// Substate is additional state information, which includes status
	// reported by the agent.
	Substate Substate
}

// JobReference identifies a job within a project.
type JobReference struct {
	// ProjectID is the ID of the project the job belongs to.
	ProjectID string
	// JobID is unique within the project. It may contain letters, numbers,
	// underscores or hyphens, at most 100 characters. If empty, the server
	// generates one.
	JobID string
}

// YarnApplication is a YARN application created by a job.
//
// This is reported by the service and is not guaranteed to be stable.
type YarnApplication struct {
	Name string
	// State is the application state.
	State YarnState
	// Progress is a number between 0 and 1.
	Progress float32
	// TrackingURL is the HTTP URL of the ApplicationMaster, HistoryServer or
	// TimelineServer that provides application-specific information.
	TrackingURL string
}

// JobScheduling holds job scheduling options.
type JobScheduling struct {
	// MaxFailuresPerHour is the number of times per hour a driver may be
	// restarted as a result of the driver exiting with non-zero code before
	// the job is reported failed. At most 10.
	MaxFailuresPerHour int32
}

// Job is a Dataproc job resource.
type Job struct {
	// Reference is the fully qualified reference to the job. When submitting
	// a job, specify only the project; the server assigns a job ID if none is
	// given.
	Reference *JobReference
	// Placement is where to submit the job. Required.
	Placement *JobPlacement
	// Variant is the application-specific job configuration. Required.
	Variant Variant
	// Status is the current status, set by the service.
	Status *JobStatus
	// StatusHistory is the previous statuses, oldest first.
	StatusHistory []*JobStatus
	// YarnApplications is the collection of YARN applications spun up by the
	// job. Beta feature.
	YarnApplications []*YarnApplication
	// DriverOutputResourceURI is a URI pointing to the location of the stdout
	// of the job's driver program.
	DriverOutputResourceURI string
	// DriverControlFilesURI is the location of driver configuration and
	// control files, if available.
	DriverControlFilesURI string
	// Labels to associate with the job; see ValidateLabels for the rules.
	Labels map[string]string
	// Scheduling is the job scheduling configuration. Optional.
	Scheduling *JobScheduling
}

// ID returns the job ID or "" if the job has no reference.
func (j *Job) ID() string {
	if j.Reference == nil {
		return ""
	}
	return j.Reference.JobID
}

// State returns the current state, or StateUnspecified if unknown.
func (j *Job) State() State {
	if j.Status == nil {
		return StateUnspecified
	}
	return j.Status.State
}

// Kind returns the variant kind, or "" if the job has no variant.
func (j *Job) Kind() VariantKind {
	if j.Variant == nil {
		return ""
	}
	return j.Variant.Kind()
}

// SubmitRequest submits a job to a cluster.
type SubmitRequest struct {
	ProjectID string
	Region    string
	Job       *Job
	// RequestID makes the submission idempotent: a second request with the
	// same ID returns the job created by the first. Optional; at most 40
	// characters of letters, numbers, underscores or hyphens.
	RequestID string
}

// GetRequest fetches a job.
type GetRequest struct {
	ProjectID string
	Region    string
	JobID     string
}

// ListRequest lists jobs in a region.
type ListRequest struct {
	ProjectID string
	Region    string
	// PageSize is the number of results to return in each response. Optional.
	PageSize int32
	// PageToken is the page token returned by a previous call. Optional.
	PageToken string
	// ClusterName limits results to jobs submitted to the cluster. Optional.
	ClusterName string
	// StateMatcher limits results by job state. Ignored if Filter is set.
	StateMatcher StateMatcher
	// Filter limits results; see ParseFilter. Optional.
	Filter string
}

// ListResponse is a page of jobs.
type ListResponse struct {
	Jobs []*Job
	// NextPageToken is empty on the last page.
	NextPageToken string
}

// UpdateRequest updates a job. Only labels can be updated.
type UpdateRequest struct {
	ProjectID string
	Region    string
	JobID     string
	// Job holds the new field values.
	Job *Job
	// UpdateMask lists the fields to update, currently only "labels".
	UpdateMask []string
}

// CancelRequest starts a job cancellation.
type CancelRequest struct {
	ProjectID string
	Region    string
	JobID     string
}

// DeleteRequest deletes a job. Active jobs cannot be deleted.
type DeleteRequest struct {
	ProjectID string
	Region    string
	JobID     string
}
