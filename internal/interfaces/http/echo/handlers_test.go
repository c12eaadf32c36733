package echo_test

import (
	"context"
	"encoding/json"
	"io"

	"github.com/labstack/echo/v4"
	automation "github.com/mohammadpnp/contact-sync/internal/application/automation"
	auth "github.com/mohammadpnp/contact-sync/internal/application/auth"
	upload "github.com/mohammadpnp/contact-sync/internal/application/upload"
	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
	"github.com/mohammadpnp/contact-sync/internal/domain/tenant"
	httpecho "github.com/mohammadpnp/contact-sync/internal/interfaces/http/echo"
)

type fakeStartUpload struct {
	output upload.StartUploadOutput
	err    error
	got    upload.StartUploadInput
}

func (f *fakeStartUpload) Execute(ctx context.Context, in upload.StartUploadInput) (upload.StartUploadOutput, error) {
	f.got = in
	if f.err != nil {
		return upload.StartUploadOutput{}, f.err
	}
	return f.output, nil
}

type fakeUploadSaver struct {
	err     error
	removed []string
}

func (f *fakeUploadSaver) Save(ctx context.Context, originalName string, r io.Reader) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	io.Copy(io.Discard, r)
	return "stored.csv", "uploads/stored.csv", nil
}

func (f *fakeUploadSaver) Remove(ctx context.Context, path string) error {
	f.removed = append(f.removed, path)
	return nil
}

type fakeJobLister struct {
	jobs []domain.UploadJob
	err  error
}

func (f *fakeJobLister) ListRecent(ctx context.Context, locationID string, limit int) ([]domain.UploadJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.jobs, nil
}

type fakeSubscriber struct {
	events []domain.ProgressEvent
}

func (f *fakeSubscriber) Subscribe(locationID string) (<-chan domain.ProgressEvent, func()) {
	ch := make(chan domain.ProgressEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch, func() {}
}

type fakeCatalogSource struct {
	fields json.RawMessage
	tags   json.RawMessage
	err    error
}

func (f *fakeCatalogSource) ListCustomFields(ctx context.Context, accessToken, locationID string) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.fields, nil
}

func (f *fakeCatalogSource) ListTags(ctx context.Context, accessToken, locationID string) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

type fakeLocationGetter struct {
	err error
}

func (f *fakeLocationGetter) GetLocation(ctx context.Context, locationID string) (tenant.Location, error) {
	if f.err != nil {
		return tenant.Location{}, f.err
	}
	return tenant.Location{LocationID: locationID, AccessToken: "token"}, nil
}

type fakeWorkflowExecutor struct {
	result    automation.Result
	err       error
	gotAction automation.Action
	gotEvent  automation.WorkflowEvent
}

func (f *fakeWorkflowExecutor) Execute(ctx context.Context, event automation.WorkflowEvent, action automation.Action) (automation.Result, error) {
	f.gotEvent = event
	f.gotAction = action
	if f.err != nil {
		return automation.Result{}, f.err
	}
	return f.result, nil
}

type fakeInstallService struct {
	installErr error
	eventErr   error
	refreshErr error
	token      string

	gotCode  string
	gotEvent auth.InstallEvent
	gotScope auth.TokenScope
}

func (f *fakeInstallService) CompleteInstall(ctx context.Context, code string) error {
	f.gotCode = code
	return f.installErr
}

func (f *fakeInstallService) HandleInstallEvent(ctx context.Context, event auth.InstallEvent) error {
	f.gotEvent = event
	return f.eventErr
}

func (f *fakeInstallService) RefreshToken(ctx context.Context, id string, scope auth.TokenScope) (string, error) {
	f.gotScope = scope
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return f.token, nil
}

type testDeps struct {
	upload    *fakeStartUpload
	saver     *fakeUploadSaver
	jobs      *fakeJobLister
	progress  *fakeSubscriber
	catalog   *fakeCatalogSource
	locations *fakeLocationGetter
	workflows *fakeWorkflowExecutor
	auth      *fakeInstallService
}

func newTestServer(deps testDeps) *echo.Echo {
	if deps.upload == nil {
		deps.upload = &fakeStartUpload{}
	}
	if deps.saver == nil {
		deps.saver = &fakeUploadSaver{}
	}
	if deps.jobs == nil {
		deps.jobs = &fakeJobLister{}
	}
	if deps.progress == nil {
		deps.progress = &fakeSubscriber{}
	}
	if deps.catalog == nil {
		deps.catalog = &fakeCatalogSource{}
	}
	if deps.locations == nil {
		deps.locations = &fakeLocationGetter{}
	}
	if deps.workflows == nil {
		deps.workflows = &fakeWorkflowExecutor{}
	}
	if deps.auth == nil {
		deps.auth = &fakeInstallService{}
	}

	e := echo.New()
	httpecho.RegisterRoutes(
		e,
		httpecho.NewUploadHandler(deps.upload, deps.saver),
		httpecho.NewJobHandler(deps.jobs),
		httpecho.NewProgressHandler(deps.progress),
		httpecho.NewCatalogHandler(deps.catalog, deps.locations),
		httpecho.NewWorkflowHandler(deps.workflows),
		httpecho.NewOAuthHandler(deps.auth),
	)
	return e
}
