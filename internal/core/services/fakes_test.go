package services

import (
	"context"
	"sort"
	"time"

	"delius-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// In-memory fakes for the repository interfaces. Each fake records the writes
// it receives so tests can assert on them.

type fakeTx struct{}

func (fakeTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeContactRepo struct {
	contacts     map[uint]*models.Contact
	created      []*models.Contact
	updated      []*models.Contact
	enforcements []*models.Enforcement
	deletedIDs   []uint
	nextID       uint

	linked       map[uint][]uint
	latestStart  *models.Contact
	latestEnd    *models.Contact
	ftcCount     int64
	underReview  bool
	rarDaysByReq map[uint]int64
	rarDaysByNsi map[uint]int64
	updateErr    error
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{
		contacts:     map[uint]*models.Contact{},
		linked:       map[uint][]uint{},
		rarDaysByReq: map[uint]int64{},
		rarDaysByNsi: map[uint]int64{},
	}
}

func (r *fakeContactRepo) Create(ctx context.Context, contact *models.Contact) error {
	r.nextID++
	contact.ID = r.nextID
	r.contacts[contact.ID] = contact
	r.created = append(r.created, contact)
	return nil
}

func (r *fakeContactRepo) CreateEnforcement(ctx context.Context, enforcement *models.Enforcement) error {
	r.enforcements = append(r.enforcements, enforcement)
	return nil
}

func (r *fakeContactRepo) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	contact, ok := r.contacts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return contact, nil
}

func (r *fakeContactRepo) Update(ctx context.Context, contact *models.Contact) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.contacts[contact.ID] = contact
	r.updated = append(r.updated, contact)
	return nil
}

func (r *fakeContactRepo) DeleteAll(ctx context.Context, ids []uint) error {
	r.deletedIDs = append(r.deletedIDs, ids...)
	for _, id := range ids {
		delete(r.contacts, id)
	}
	return nil
}

func (r *fakeContactRepo) GetLinkedContactIDs(ctx context.Context, rootIDs []uint) ([]uint, error) {
	var all []uint
	frontier := rootIDs
	for len(frontier) > 0 {
		var next []uint
		for _, id := range frontier {
			next = append(next, r.linked[id]...)
		}
		all = append(all, next...)
		frontier = next
	}
	return all, nil
}

// FindClashingAppointmentIDs mirrors the SQL overlap query over the in-memory
// contacts: same offender, same day, attendance type, [start, end) overlap.
func (r *fakeContactRepo) FindClashingAppointmentIDs(ctx context.Context, offenderID uint, date time.Time, startTime, endTime string, excludeContactID *uint) ([]uint, error) {
	var ids []uint
	for _, c := range r.contacts {
		if c.OffenderID != offenderID || c.Type == nil || !c.Type.AttendanceContact {
			continue
		}
		if c.StartTime == nil || c.EndTime == nil || !sameDay(c.Date, date) {
			continue
		}
		if excludeContactID != nil && c.ID == *excludeContactID {
			continue
		}
		if *c.StartTime < endTime && *c.EndTime > startTime {
			ids = append(ids, c.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeContactRepo) LatestContactOfTypes(ctx context.Context, eventID uint, typeCodes []string) (*models.Contact, error) {
	for _, code := range typeCodes {
		if code == ContactTypeBreachStart {
			return r.latestStart, nil
		}
	}
	return r.latestEnd, nil
}

func (r *fakeContactRepo) CountFailuresToComply(ctx context.Context, eventID uint, since *time.Time) (int64, error) {
	return r.ftcCount, nil
}

func (r *fakeContactRepo) HasEnforcementUnderReview(ctx context.Context, eventID uint, reviewTypeCode string, since *time.Time) (bool, error) {
	return r.underReview, nil
}

func (r *fakeContactRepo) CountRarDaysByRequirement(ctx context.Context, requirementID uint) (int64, error) {
	return r.rarDaysByReq[requirementID], nil
}

func (r *fakeContactRepo) CountRarDaysByNsi(ctx context.Context, nsiID uint) (int64, error) {
	return r.rarDaysByNsi[nsiID], nil
}

type fakeOffenderRepo struct {
	offenders map[string]*models.Offender
}

func (r *fakeOffenderRepo) GetByCRN(ctx context.Context, crn string) (*models.Offender, error) {
	offender, ok := r.offenders[crn]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return offender, nil
}

type fakeEventRepo struct {
	updatedEvents       []*models.Event
	updatedRequirements []*models.Requirement
	rarRequirements     []*models.Requirement
}

func (r *fakeEventRepo) Update(ctx context.Context, event *models.Event) error {
	r.updatedEvents = append(r.updatedEvents, event)
	return nil
}

func (r *fakeEventRepo) UpdateRequirement(ctx context.Context, requirement *models.Requirement) error {
	r.updatedRequirements = append(r.updatedRequirements, requirement)
	return nil
}

func (r *fakeEventRepo) ListActiveRarRequirements(ctx context.Context) ([]*models.Requirement, error) {
	return r.rarRequirements, nil
}

type fakeNsiRepo struct {
	nsis    map[uint]*models.Nsi
	created []*models.Nsi
	updated []*models.Nsi
	nextID  uint
	rarNsis []*models.Nsi
}

func newFakeNsiRepo() *fakeNsiRepo {
	return &fakeNsiRepo{nsis: map[uint]*models.Nsi{}}
}

func (r *fakeNsiRepo) Create(ctx context.Context, nsi *models.Nsi) error {
	r.nextID++
	nsi.ID = r.nextID
	r.nsis[nsi.ID] = nsi
	r.created = append(r.created, nsi)
	return nil
}

func (r *fakeNsiRepo) GetByID(ctx context.Context, id uint) (*models.Nsi, error) {
	nsi, ok := r.nsis[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return nsi, nil
}

func (r *fakeNsiRepo) Update(ctx context.Context, nsi *models.Nsi) error {
	r.nsis[nsi.ID] = nsi
	r.updated = append(r.updated, nsi)
	return nil
}

func (r *fakeNsiRepo) ListActiveRarNsis(ctx context.Context) ([]*models.Nsi, error) {
	return r.rarNsis, nil
}

type fakeReferenceRepo struct {
	contactTypes map[string]*models.ContactType
	actions      map[string]*models.EnforcementAction
	providers    map[string]*models.Provider
	nsiTypes     map[string]*models.NsiType
	nsiOutcomes  map[string]*models.NsiOutcome
}

func newFakeReferenceRepo() *fakeReferenceRepo {
	return &fakeReferenceRepo{
		contactTypes: map[string]*models.ContactType{},
		actions:      map[string]*models.EnforcementAction{},
		providers:    map[string]*models.Provider{},
		nsiTypes:     map[string]*models.NsiType{},
		nsiOutcomes:  map[string]*models.NsiOutcome{},
	}
}

func (r *fakeReferenceRepo) GetContactType(ctx context.Context, code string) (*models.ContactType, error) {
	contactType, ok := r.contactTypes[code]
	if !ok || !contactType.Selectable {
		return nil, gorm.ErrRecordNotFound
	}
	return contactType, nil
}

func (r *fakeReferenceRepo) GetContactTypeByID(ctx context.Context, id uint) (*models.ContactType, error) {
	for _, contactType := range r.contactTypes {
		if contactType.ID == id {
			return contactType, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeReferenceRepo) GetSystemContactType(ctx context.Context, code string) (*models.ContactType, error) {
	contactType, ok := r.contactTypes[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return contactType, nil
}

func (r *fakeReferenceRepo) GetEnforcementAction(ctx context.Context, code string) (*models.EnforcementAction, error) {
	action, ok := r.actions[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return action, nil
}

func (r *fakeReferenceRepo) GetProvider(ctx context.Context, code string) (*models.Provider, error) {
	provider, ok := r.providers[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return provider, nil
}

func (r *fakeReferenceRepo) GetNsiType(ctx context.Context, code string) (*models.NsiType, error) {
	nsiType, ok := r.nsiTypes[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return nsiType, nil
}

func (r *fakeReferenceRepo) GetNsiOutcome(ctx context.Context, code string) (*models.NsiOutcome, error) {
	outcome, ok := r.nsiOutcomes[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return outcome, nil
}

type fakeAuditRepo struct {
	records []*models.AuditedInteraction
}

func (r *fakeAuditRepo) Create(ctx context.Context, interaction *models.AuditedInteraction) error {
	r.records = append(r.records, interaction)
	return nil
}
