package curator

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
)

// IndexBuildRequest one invocation of the external index build tool
type IndexBuildRequest struct {
	// FastaFile path of the materialized FASTA input
	FastaFile string `validate:"required"`
	// OutputPath path prefix for the generated index files
	OutputPath string `validate:"required"`
	// Title display title embedded in the generated index
	Title string `validate:"required"`
}

// IndexBuilder builds a searchable index from a materialized FASTA file
type IndexBuilder interface {
	/*
		Build run the index build for one sealed snapshot

			@param ctx context.Context - execution context
			@param request IndexBuildRequest - build request
	*/
	Build(ctx context.Context, request IndexBuildRequest) error
}

// CommandIndexBuilderParams parameters for defining a command index builder
type CommandIndexBuilderParams struct {
	// Executable path of the index build tool binary
	Executable string `validate:"required"`
}

// commandIndexBuilder implements IndexBuilder by shelling out to the build tool
type commandIndexBuilder struct {
	goutils.Component
	executable string
}

/*
NewCommandIndexBuilder define an index builder invoking an external tool

	@param params CommandIndexBuilderParams - builder parameters
	@return new index builder
*/
func NewCommandIndexBuilder(params CommandIndexBuilderParams) (IndexBuilder, error) {
	validate := validator.New()
	if err := validate.Struct(&params); err != nil {
		return nil, fmt.Errorf("index builder params are not valid [%w]", err)
	}

	logTags := log.Fields{"package": "barrel", "module": "curator", "component": "index-builder"}

	return &commandIndexBuilder{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		executable: params.Executable,
	}, nil
}

/*
Build run the index build for one sealed snapshot

	@param ctx context.Context - execution context
	@param request IndexBuildRequest - build request
*/
func (b *commandIndexBuilder) Build(ctx context.Context, request IndexBuildRequest) error {
	logTags := b.GetLogTagsForContext(ctx)

	validate := validator.New()
	if err := validate.Struct(&request); err != nil {
		return fmt.Errorf("index build request is not valid [%w]", err)
	}

	cmd := exec.CommandContext(
		ctx,
		b.executable,
		"-in", request.FastaFile,
		"-out", request.OutputPath,
		"-title", request.Title,
		"-dbtype", "nucl",
	)

	log.
		WithFields(logTags).
		WithField("fasta", request.FastaFile).
		WithField("output", request.OutputPath).
		Info("Running index build tool")

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.
			WithError(err).
			WithFields(logTags).
			WithField("output", string(output)).
			Error("Index build tool failed")
		return &IndexBuildError{Output: string(output), Cause: err}
	}

	return nil
}
