package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/satyam1256/disaster/internal/cache"
	"github.com/satyam1256/disaster/internal/geocode"
	"github.com/satyam1256/disaster/internal/service"
	"github.com/satyam1256/disaster/pkg/models"
)

// fakeStore is an in-memory service.Store with per-method error injection.
type fakeStore struct {
	disasters map[string]*models.Disaster
	reports   map[string]*models.Report
	resources map[string]*models.Resource

	radiusErr     error
	radiusResults []*models.Resource
	createRepErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		disasters: map[string]*models.Disaster{},
		reports:   map[string]*models.Report{},
		resources: map[string]*models.Resource{},
	}
}

func (f *fakeStore) CreateDisaster(d *models.Disaster) (*models.Disaster, error) {
	if d.ID == "" {
		d.ID = "d-new"
	}
	f.disasters[d.ID] = d
	return d, nil
}

func (f *fakeStore) Disasters(tag string) ([]*models.Disaster, error) {
	out := []*models.Disaster{}
	for _, d := range f.disasters {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) DisasterByID(id string) (*models.Disaster, error) {
	d, ok := f.disasters[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return d, nil
}

func (f *fakeStore) UpdateDisaster(id string, patch models.DisasterPatch) (*models.Disaster, error) {
	d, ok := f.disasters[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	if patch.Title != nil {
		d.Title = *patch.Title
	}
	return d, nil
}

func (f *fakeStore) DeleteDisaster(id string) error {
	if _, ok := f.disasters[id]; !ok {
		return service.ErrNotFound
	}
	delete(f.disasters, id)
	return nil
}

func (f *fakeStore) AppendAuditTrail(id, action, userID string) error { return nil }

func (f *fakeStore) CreateReport(r *models.Report) (*models.Report, error) {
	if f.createRepErr != nil {
		return nil, f.createRepErr
	}
	if r.ID == "" {
		r.ID = "r-new"
	}
	if r.VerificationStatus == "" {
		r.VerificationStatus = models.StatusPending
	}
	f.reports[r.ID] = r
	return r, nil
}

func (f *fakeStore) ReportByID(id string) (*models.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) Reports(disasterID string, fl models.ReportFilter) ([]*models.Report, error) {
	out := []*models.Report{}
	for _, r := range f.reports {
		if r.DisasterID != disasterID {
			continue
		}
		if fl.VerificationStatus != "" && r.VerificationStatus != fl.VerificationStatus {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) AllReports(fl models.ReportFilter) ([]*models.Report, error) {
	out := []*models.Report{}
	for _, r := range f.reports {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) UpdateReport(id string, patch models.ReportPatch) (*models.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	if patch.VerificationStatus != nil {
		r.VerificationStatus = *patch.VerificationStatus
	}
	return r, nil
}

func (f *fakeStore) DeleteReport(id string) error {
	if _, ok := f.reports[id]; !ok {
		return service.ErrNotFound
	}
	delete(f.reports, id)
	return nil
}

func (f *fakeStore) ReportStats(disasterID string) (*models.ReportStats, error) {
	return &models.ReportStats{}, nil
}

func (f *fakeStore) CreateResource(r *models.Resource) (*models.Resource, error) {
	if r.ID == "" {
		r.ID = "res-new"
	}
	f.resources[r.ID] = r
	return r, nil
}

func (f *fakeStore) ResourceByID(id string) (*models.Resource, error) {
	r, ok := f.resources[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) ResourcesForDisaster(disasterID string) ([]*models.Resource, error) {
	out := []*models.Resource{}
	for _, r := range f.resources {
		if r.DisasterID == disasterID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ResourcesWithinRadius(disasterID string, lat, lng, radiusKm float64) ([]*models.Resource, error) {
	if f.radiusErr != nil {
		return nil, f.radiusErr
	}
	return f.radiusResults, nil
}

func (f *fakeStore) UpdateResource(id string, patch models.ResourcePatch) (*models.Resource, error) {
	r, ok := f.resources[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) DeleteResource(id string) error {
	if _, ok := f.resources[id]; !ok {
		return service.ErrNotFound
	}
	delete(f.resources, id)
	return nil
}

// fakePub records every publish.
type fakePub struct {
	events []pubEvent
}

type pubEvent struct {
	topic   string
	payload any
}

func (p *fakePub) Publish(topic string, payload any) {
	p.events = append(p.events, pubEvent{topic: topic, payload: payload})
}

func (p *fakePub) topics() []string {
	out := []string{}
	for _, e := range p.events {
		out = append(out, e.topic)
	}
	return out
}

type fakeLLM struct {
	location string
	verdict  string
	err      error
	calls    int
}

func (l *fakeLLM) ExtractLocation(ctx context.Context, description string) (string, error) {
	l.calls++
	return l.location, l.err
}

func (l *fakeLLM) VerifyImage(ctx context.Context, imageURL string) (string, error) {
	l.calls++
	return l.verdict, l.err
}

type fakeGeo struct {
	coords *geocode.Coordinates
	err    error
	calls  int
}

func (g *fakeGeo) Search(ctx context.Context, name string) (*geocode.Coordinates, error) {
	g.calls++
	return g.coords, g.err
}

type fakeUpdates struct {
	items []models.OfficialUpdate
	calls int
}

func (u *fakeUpdates) Aggregate(ctx context.Context) []models.OfficialUpdate {
	u.calls++
	return u.items
}

type deps struct {
	store   *fakeStore
	cache   *cache.Memory
	pub     *fakePub
	llm     *fakeLLM
	geo     *fakeGeo
	updates *fakeUpdates
	svc     *service.Service
}

func newDeps(t *testing.T) *deps {
	t.Helper()
	d := &deps{
		store:   newFakeStore(),
		cache:   cache.NewMemory(),
		pub:     &fakePub{},
		llm:     &fakeLLM{},
		geo:     &fakeGeo{},
		updates: &fakeUpdates{},
	}
	d.svc = service.NewService(d.store, d.cache, d.pub, d.llm, d.geo, d.updates, zerolog.Nop())
	return d
}

func (d *deps) seedDisaster(id string) *models.Disaster {
	dis := &models.Disaster{ID: id, Title: "Flood", LocationName: "Lower Manhattan"}
	d.store.disasters[id] = dis
	return dis
}

func TestResourcesNear_ActiveWithZeroResultsStaysActive(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")
	d.store.radiusResults = []*models.Resource{}

	res, err := d.svc.ResourcesNear(context.Background(), "d1", 40.7, -74.0, 5, "")
	if err != nil {
		t.Fatalf("ResourcesNear: %v", err)
	}
	if res.GeospatialStatus != models.GeoActive {
		t.Fatalf("status = %q, want active", res.GeospatialStatus)
	}
	if len(res.Resources) != 0 {
		t.Fatalf("resources = %d, want 0", len(res.Resources))
	}
	if res.Note != "" {
		t.Fatalf("note should be empty for active results, got %q", res.Note)
	}
	payload := d.pub.events[0].payload.(map[string]any)
	if payload["geospatial_status"] != models.GeoActive {
		t.Fatalf("published geospatial_status = %v, want active", payload["geospatial_status"])
	}
}

func TestResourcesNear_StoreErrorFallsBackToFullList(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")
	d.store.radiusErr = errors.New("function acos does not exist")
	d.store.resources["res1"] = &models.Resource{ID: "res1", DisasterID: "d1", Type: "shelter"}
	d.store.resources["res2"] = &models.Resource{ID: "res2", DisasterID: "other"}

	res, err := d.svc.ResourcesNear(context.Background(), "d1", 40.7, -74.0, 5, "")
	if err != nil {
		t.Fatalf("ResourcesNear: %v", err)
	}
	if res.GeospatialStatus != models.GeoFallback {
		t.Fatalf("status = %q, want fallback", res.GeospatialStatus)
	}
	if res.Note == "" {
		t.Fatal("fallback result must carry a note")
	}
	if len(res.Resources) != 1 || res.Resources[0].ID != "res1" {
		t.Fatalf("fallback should return the disaster's own resources, got %+v", res.Resources)
	}
	if len(d.pub.events) != 1 || d.pub.events[0].topic != "resources_updated" {
		t.Fatalf("expected one resources_updated publish, got %v", d.pub.topics())
	}
	payload, ok := d.pub.events[0].payload.(map[string]any)
	if !ok {
		t.Fatalf("payload is %T, want map", d.pub.events[0].payload)
	}
	if payload["geospatial_status"] != models.GeoFallback {
		t.Fatalf("published geospatial_status = %v, want fallback", payload["geospatial_status"])
	}
	if _, ok := payload["resources"]; !ok {
		t.Fatal("published payload must carry the resource list")
	}
}

func TestResourcesNear_DefaultRadiusApplied(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")

	res, err := d.svc.ResourcesNear(context.Background(), "d1", 40.7, -74.0, 0, "")
	if err != nil {
		t.Fatalf("ResourcesNear: %v", err)
	}
	if res.QueryParams.Radius != service.DefaultRadiusKm {
		t.Fatalf("radius = %v, want %v", res.QueryParams.Radius, service.DefaultRadiusKm)
	}
}

func TestResourcesNear_TypeFilterReportsTotalFound(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")
	d.store.radiusResults = []*models.Resource{
		{ID: "a", DisasterID: "d1", Type: "shelter"},
		{ID: "b", DisasterID: "d1", Type: "food"},
		{ID: "c", DisasterID: "d1", Type: "shelter"},
	}

	res, err := d.svc.ResourcesNear(context.Background(), "d1", 40.7, -74.0, 5, "shelter")
	if err != nil {
		t.Fatalf("ResourcesNear: %v", err)
	}
	if len(res.Resources) != 2 {
		t.Fatalf("filtered resources = %d, want 2", len(res.Resources))
	}
	if res.TotalFound == nil || *res.TotalFound != 3 {
		t.Fatalf("total_found = %v, want 3", res.TotalFound)
	}
}

func TestResourcesNear_UnknownDisaster(t *testing.T) {
	d := newDeps(t)
	if _, err := d.svc.ResourcesNear(context.Background(), "nope", 0, 0, 5, ""); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateReport_InvalidatesSocialMediaCache(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")

	ctx := context.Background()
	if _, err := d.svc.SocialMedia(ctx, "d1"); err != nil {
		t.Fatalf("SocialMedia: %v", err)
	}
	if _, ok := d.cache.Get(ctx, cache.SocialMediaKey("d1")); !ok {
		t.Fatal("social media feed should be cached after first read")
	}

	if _, err := d.svc.CreateReport(ctx, &models.Report{DisasterID: "d1", Content: "water rising"}); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if _, ok := d.cache.Get(ctx, cache.SocialMediaKey("d1")); ok {
		t.Fatal("report creation must erase the cached social media feed")
	}
}

func TestCreateReport_WriteFailureSkipsInvalidationAndBroadcast(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")
	ctx := context.Background()

	d.cache.Set(ctx, cache.SocialMediaKey("d1"), []byte(`[]`), cache.DefaultTTL)
	d.store.createRepErr = errors.New("constraint violation")

	if _, err := d.svc.CreateReport(ctx, &models.Report{DisasterID: "d1"}); err == nil {
		t.Fatal("expected create error")
	}
	if _, ok := d.cache.Get(ctx, cache.SocialMediaKey("d1")); !ok {
		t.Fatal("failed write must not invalidate the cache")
	}
	if len(d.pub.events) != 0 {
		t.Fatalf("failed write must not broadcast, got %v", d.pub.topics())
	}
}

func TestCreateReport_UnknownDisaster(t *testing.T) {
	d := newDeps(t)
	if _, err := d.svc.CreateReport(context.Background(), &models.Report{DisasterID: "ghost"}); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestVerifyReport_RejectsUnknownStatus(t *testing.T) {
	d := newDeps(t)
	if _, err := d.svc.VerifyReport(context.Background(), "r1", "maybe"); !errors.Is(err, service.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if _, err := d.svc.VerifyReport(context.Background(), "r1", models.StatusPending); !errors.Is(err, service.ErrInvalidStatus) {
		t.Fatalf("verify back to pending must be rejected, got %v", err)
	}
}

func TestVerifyReport_PublishesAndInvalidates(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")
	ctx := context.Background()
	d.store.reports["r1"] = &models.Report{ID: "r1", DisasterID: "d1", VerificationStatus: models.StatusPending}
	d.cache.Set(ctx, cache.SocialMediaKey("d1"), []byte(`[]`), cache.DefaultTTL)

	updated, err := d.svc.VerifyReport(ctx, "r1", models.StatusVerified)
	if err != nil {
		t.Fatalf("VerifyReport: %v", err)
	}
	if updated.VerificationStatus != models.StatusVerified {
		t.Fatalf("status = %q, want verified", updated.VerificationStatus)
	}
	if _, ok := d.cache.Get(ctx, cache.SocialMediaKey("d1")); ok {
		t.Fatal("verification must erase the cached feed")
	}
	if len(d.pub.events) != 1 || d.pub.events[0].topic != "social_media_updated" {
		t.Fatalf("expected social_media_updated publish, got %v", d.pub.topics())
	}
}

func TestUpdateDisaster_InvalidatesOfficialUpdates(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")
	ctx := context.Background()
	d.cache.Set(ctx, cache.OfficialUpdatesKey("d1"), []byte(`[]`), cache.OfficialUpdatesTTL)

	title := "Severe Flood"
	if _, err := d.svc.UpdateDisaster(ctx, "d1", models.DisasterPatch{Title: &title}, "reliefAdmin"); err != nil {
		t.Fatalf("UpdateDisaster: %v", err)
	}
	if _, ok := d.cache.Get(ctx, cache.OfficialUpdatesKey("d1")); ok {
		t.Fatal("disaster update must erase the cached official updates")
	}
	if len(d.pub.events) != 1 || d.pub.events[0].topic != "disaster_updated" {
		t.Fatalf("expected disaster_updated publish, got %v", d.pub.topics())
	}
}

func TestOfficialUpdates_SecondReadServedFromCache(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")
	d.updates.items = []models.OfficialUpdate{{Title: "Evacuation routes announced", Source: "FEMA"}}
	ctx := context.Background()

	first, err := d.svc.OfficialUpdates(ctx, "d1")
	if err != nil {
		t.Fatalf("OfficialUpdates: %v", err)
	}
	second, err := d.svc.OfficialUpdates(ctx, "d1")
	if err != nil {
		t.Fatalf("OfficialUpdates (cached): %v", err)
	}
	if d.updates.calls != 1 {
		t.Fatalf("aggregate calls = %d, want 1", d.updates.calls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].Title != first[0].Title {
		t.Fatalf("cached read must match the original, got %v vs %v", second, first)
	}
}

func TestOfficialUpdates_EmptyResultIsCached(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")
	ctx := context.Background()

	if _, err := d.svc.OfficialUpdates(ctx, "d1"); err != nil {
		t.Fatalf("OfficialUpdates: %v", err)
	}
	if _, err := d.svc.OfficialUpdates(ctx, "d1"); err != nil {
		t.Fatalf("OfficialUpdates: %v", err)
	}
	if d.updates.calls != 1 {
		t.Fatalf("empty result must be cached too, aggregate calls = %d", d.updates.calls)
	}
}

func TestGeocode_ExtractsThenSearchesAndCaches(t *testing.T) {
	d := newDeps(t)
	d.llm.location = "Lower Manhattan"
	d.geo.coords = &geocode.Coordinates{Lat: 40.71, Lng: -74.01}
	ctx := context.Background()

	res, err := d.svc.Geocode(ctx, "Flooding near the seaport in lower Manhattan", "")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if res.LocationName != "Lower Manhattan" || res.Lat != 40.71 {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := d.svc.Geocode(ctx, "Flooding near the seaport in lower Manhattan", ""); err != nil {
		t.Fatalf("Geocode (cached): %v", err)
	}
	if d.llm.calls != 1 || d.geo.calls != 1 {
		t.Fatalf("cached read must not call upstreams again, llm=%d geo=%d", d.llm.calls, d.geo.calls)
	}
}

func TestGeocode_NoLocationFound(t *testing.T) {
	d := newDeps(t)
	d.llm.location = ""

	if _, err := d.svc.Geocode(context.Background(), "something happened somewhere", ""); !errors.Is(err, service.ErrNoLocation) {
		t.Fatalf("err = %v, want ErrNoLocation", err)
	}
}

func TestGeocode_SkipsExtractionWhenNameGiven(t *testing.T) {
	d := newDeps(t)
	d.geo.coords = &geocode.Coordinates{Lat: 1, Lng: 2}

	if _, err := d.svc.Geocode(context.Background(), "", "Chennai"); err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if d.llm.calls != 0 {
		t.Fatalf("extraction must be skipped when location name is given, calls=%d", d.llm.calls)
	}
}

func TestVerifyImage_CachesVerdict(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")
	d.llm.verdict = "likely authentic"
	ctx := context.Background()

	v1, err := d.svc.VerifyImage(ctx, "d1", "http://img/a.jpg")
	if err != nil {
		t.Fatalf("VerifyImage: %v", err)
	}
	v2, err := d.svc.VerifyImage(ctx, "d1", "http://img/a.jpg")
	if err != nil {
		t.Fatalf("VerifyImage (cached): %v", err)
	}
	if v1 != "likely authentic" || v2 != v1 {
		t.Fatalf("verdicts differ: %q vs %q", v1, v2)
	}
	if d.llm.calls != 1 {
		t.Fatalf("cached read must not call the model again, calls=%d", d.llm.calls)
	}
}

func TestSocialMedia_IncludesVerifiedReports(t *testing.T) {
	d := newDeps(t)
	dis := d.seedDisaster("d1")
	dis.Tags = []string{"flood"}
	d.store.reports["r1"] = &models.Report{ID: "r1", DisasterID: "d1", Content: "Bridge out on 5th", UserID: "volunteerJoe", VerificationStatus: models.StatusVerified}
	d.store.reports["r2"] = &models.Report{ID: "r2", DisasterID: "d1", Content: "unchecked rumor", UserID: "demoUser", VerificationStatus: models.StatusPending}

	posts, err := d.svc.SocialMedia(context.Background(), "d1")
	if err != nil {
		t.Fatalf("SocialMedia: %v", err)
	}
	var sawVerified, sawPending bool
	for _, p := range posts {
		if p.Post == "Bridge out on 5th" {
			sawVerified = true
		}
		if p.Post == "unchecked rumor" {
			sawPending = true
		}
	}
	if !sawVerified {
		t.Fatal("verified report should appear in the feed")
	}
	if sawPending {
		t.Fatal("pending report must not appear in the feed")
	}

	b, ok := d.cache.Get(context.Background(), cache.SocialMediaKey("d1"))
	if !ok {
		t.Fatal("feed should be cached")
	}
	var cached []models.SocialMediaPost
	if err := json.Unmarshal(b, &cached); err != nil {
		t.Fatalf("cached feed not valid JSON: %v", err)
	}
}

func TestDeleteReport_PayloadCarriesDisasterID(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")
	d.store.reports["r1"] = &models.Report{ID: "r1", DisasterID: "d1"}

	if err := d.svc.DeleteReport(context.Background(), "r1"); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if len(d.pub.events) != 1 || d.pub.events[0].topic != "social_media_updated" {
		t.Fatalf("expected social_media_updated publish, got %v", d.pub.topics())
	}
	payload := d.pub.events[0].payload.(map[string]any)
	if payload["disaster_id"] != "d1" {
		t.Fatalf("deletion payload disaster_id = %v, want d1", payload["disaster_id"])
	}
	if payload["id"] != "r1" {
		t.Fatalf("deletion payload id = %v, want r1", payload["id"])
	}
}

func TestSocialMedia_CachedReadStillPublishes(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")
	ctx := context.Background()

	if _, err := d.svc.SocialMedia(ctx, "d1"); err != nil {
		t.Fatalf("SocialMedia: %v", err)
	}
	if _, err := d.svc.SocialMedia(ctx, "d1"); err != nil {
		t.Fatalf("SocialMedia (cached): %v", err)
	}
	if len(d.pub.events) != 2 {
		t.Fatalf("publishes = %d, want one per read", len(d.pub.events))
	}
	for i, e := range d.pub.events {
		if e.topic != "social_media_updated" {
			t.Fatalf("event %d topic = %q", i, e.topic)
		}
	}
}

func TestDeleteResource_PublishesDeletedID(t *testing.T) {
	d := newDeps(t)
	d.seedDisaster("d1")
	d.store.resources["res1"] = &models.Resource{ID: "res1", DisasterID: "d1"}

	if err := d.svc.DeleteResource(context.Background(), "res1"); err != nil {
		t.Fatalf("DeleteResource: %v", err)
	}
	if len(d.pub.events) != 1 || d.pub.events[0].topic != "resources_updated" {
		t.Fatalf("expected resources_updated publish, got %v", d.pub.topics())
	}
	payload, ok := d.pub.events[0].payload.(map[string]any)
	if !ok || payload["id"] != "res1" {
		t.Fatalf("deleted id missing from payload: %v", d.pub.events[0].payload)
	}
}
