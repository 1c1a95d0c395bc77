package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/config"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/logger"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/utils"
)

// Request describes one publish
type Request struct {
	Project       types.Project
	Workspace     string
	Configuration string
}

// Result summarises a completed publish
type Result struct {
	Version           string
	PreviousPatch     uint64
	DescriptorVersion int
	Source            VersionSource
	Archive           string
	Files             int
	ReleaseID         int64
	AssetURL          string
}

// Publisher archives packaged output and uploads it as a release asset
type Publisher struct {
	Service ReleaseService
	Logger  logger.Logger
	config  *config.Manager
}

// NewPublisher creates a publisher using svc for the remote calls
func NewPublisher(svc ReleaseService, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.Discard()
	}
	return &Publisher{Service: svc, Logger: log, config: config.NewManager()}
}

// PlanVersion lists releases and computes the next version. A listing
// failure is logged and treated like an empty history.
func (p *Publisher) PlanVersion(ctx context.Context, project types.Project) VersionPlan {
	log := p.Logger.WithProject(project.Name)
	owner, repo := project.Repository()

	releases, err := p.Service.ListReleases(ctx, owner, repo)
	if err != nil {
		plan := NextVersion(nil)
		plan.Source = SourceListFailed
		log.Warn(fmt.Sprintf("Could not list releases, defaulting to %s", plan),
			logger.WithField("repo", owner+"/"+repo),
			logger.WithField("error", err))
		return plan
	}

	plan := NextVersion(releases)
	switch plan.Source {
	case SourceNoReleases:
		log.Info(fmt.Sprintf("No releases yet, starting at %s", plan))
	case SourceUnparseable:
		log.Warn(fmt.Sprintf("Latest release %q is not major.minor.patch, defaulting to %s", plan.Latest, plan))
	default:
		log.Info(fmt.Sprintf("Latest release %s, next version %s", plan.Latest, plan))
	}
	return plan
}

// Publish stamps the plugin descriptor when needed, zips the packaged
// directory and uploads it to a new release. Remote failures after the
// version is planned are returned with KindRemote.
func (p *Publisher) Publish(ctx context.Context, req Request) (*Result, error) {
	project := req.Project
	log := p.Logger.WithProject(project.Name)

	if err := p.config.ValidatePublish(project); err != nil {
		return nil, err
	}

	packaged := filepath.Join(req.Workspace, project.Config.PublishContent)
	if !utils.DirectoryExists(packaged) {
		return nil, types.NewError(types.KindConfig, "publish",
			fmt.Errorf("publish directory %s does not exist", packaged))
	}

	plan := p.PlanVersion(ctx, project)
	version := plan.String()
	result := &Result{
		Version:           version,
		PreviousPatch:     plan.PreviousPatch,
		DescriptorVersion: plan.DescriptorVersion(),
		Source:            plan.Source,
	}

	if project.IsPlugin() {
		path := DescriptorPath(req.Workspace, project.Config.PublishContent, project.Name)
		if err := StampDescriptor(path, result.DescriptorVersion, version); err != nil {
			return nil, types.NewError(types.KindConfig, "stamp descriptor", err)
		}
		log.Info("Stamped plugin descriptor",
			logger.WithField("Version", result.DescriptorVersion),
			logger.WithField("VersionName", version))
	}

	name := ArchiveName(project.Name, version, req.Configuration)
	archive := filepath.Join(req.Workspace, name)
	files, err := CreateArchive(packaged, archive)
	if err != nil {
		return nil, fmt.Errorf("create archive %s: %w", name, err)
	}
	result.Archive = archive
	result.Files = files
	fields := []logger.Field{logger.WithField("archive", name), logger.WithField("files", files)}
	if info, err := os.Stat(archive); err == nil {
		fields = append(fields, logger.WithField("size", utils.FormatBytes(info.Size())))
	}
	log.Info("Created archive", fields...)

	owner, repo := project.Repository()
	created, err := p.Service.CreateRelease(ctx, owner, repo, version)
	if err != nil {
		return result, types.NewError(types.KindRemote, "create release "+version, err)
	}
	result.ReleaseID = created.ID

	release, err := p.Service.GetRelease(ctx, owner, repo, created.ID)
	if err != nil {
		return result, types.NewError(types.KindRemote, "get release "+version, err)
	}

	asset, err := p.Service.UploadAsset(ctx, owner, repo, release.ID, archive, name)
	if err != nil {
		return result, types.NewError(types.KindRemote, "upload "+name, err)
	}
	result.AssetURL = asset.URL

	log.Success(fmt.Sprintf("Published %s to %s/%s", version, owner, repo),
		logger.WithField("asset", asset.Name))
	return result, nil
}
