// api/service/notification_service_test.go
package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mealcraft_errors "github.com/mealcraft/api/errors"
	logger "github.com/mealcraft/api/logging"
	"github.com/mealcraft/api/model"
	"github.com/mealcraft/api/test/mock"
	"github.com/mealcraft/api/util"
)

func TestMain(m *testing.M) {
	logger.InitLogger("../logging")
	os.Exit(m.Run())
}

type fakeNotificationStore struct {
	created []model.Notification
	failFor string
}

func (f *fakeNotificationStore) CreateNotification(ctx context.Context, n model.Notification) (string, error) {
	if f.failFor != "" && n.UserEmail == f.failFor {
		return "", errors.New("store unavailable")
	}
	f.created = append(f.created, n)
	return "id-" + n.UserEmail, nil
}

func (f *fakeNotificationStore) ListNotifications(ctx context.Context, userEmail string, unreadOnly bool) ([]*model.Notification, error) {
	var out []*model.Notification
	for i := range f.created {
		if f.created[i].UserEmail == userEmail {
			out = append(out, &f.created[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkAsRead(ctx context.Context, notificationID string, userEmail string) error {
	for i := range f.created {
		if f.created[i].ID == notificationID && f.created[i].UserEmail == userEmail {
			f.created[i].IsRead = true
			return nil
		}
	}
	return mealcraft_errors.ErrNotificationNotFound
}

func (f *fakeNotificationStore) MarkAllAsRead(ctx context.Context, userEmail string) error {
	return nil
}

func (f *fakeNotificationStore) DeleteNotification(ctx context.Context, notificationID string, userEmail string) error {
	for i := range f.created {
		if f.created[i].ID == notificationID && f.created[i].UserEmail == userEmail {
			f.created = append(f.created[:i], f.created[i+1:]...)
			return nil
		}
	}
	return mealcraft_errors.ErrNotificationNotFound
}

type fakeSubscribers struct {
	byTag map[string][]string
	err   error
}

func (f *fakeSubscribers) GetUsersWithCOI(ctx context.Context, coi string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byTag[coi], nil
}

func newRecipeEvent(recipe *model.Recipe) util.Event {
	return util.Event{Type: util.TopicRecipeCreated, Payload: recipe}
}

func TestRecipeCreatedFanOut(t *testing.T) {
	store := &fakeNotificationStore{}
	subs := new(mock.MockDirectory)
	subs.On("GetUsersWithCOI", tmock.Anything, "DESSERT").
		Return([]string{"alice@example.com", "owner@example.com"}, nil)
	subs.On("GetUsersWithCOI", tmock.Anything, "BEEF").
		Return([]string{"bob@example.com"}, nil)
	svc := NewNotificationService(store, subs, util.NewEventBus())

	recipe := &model.Recipe{
		ID:            "r1",
		Name:          "Tarte Tatin",
		OwnerEmail:    "owner@example.com",
		CommunityTags: []string{"DESSERT", "BEEF"},
	}

	require.NoError(t, svc.handleRecipeCreated(context.Background(), newRecipeEvent(recipe)))

	require.Len(t, store.created, 2)

	assert.Equal(t, "alice@example.com", store.created[0].UserEmail)
	assert.Equal(t, "New DESSERT recipe added: Tarte Tatin", store.created[0].Message)
	assert.Equal(t, "r1", store.created[0].RecipeID)
	assert.Equal(t, "DESSERT", store.created[0].CommunityTag)

	assert.Equal(t, "bob@example.com", store.created[1].UserEmail)
	assert.Equal(t, "New BEEF recipe added: Tarte Tatin", store.created[1].Message)

	subs.AssertExpectations(t)
}

// The owner never gets notified about their own recipe, regardless of case.
func TestFanOutSkipsOwnerCaseInsensitively(t *testing.T) {
	store := &fakeNotificationStore{}
	subs := &fakeSubscribers{byTag: map[string][]string{
		"BEEF": {"Owner@Example.com"},
	}}
	svc := NewNotificationService(store, subs, util.NewEventBus())

	recipe := &model.Recipe{
		ID:            "r1",
		Name:          "Stew",
		OwnerEmail:    "owner@example.com",
		CommunityTags: []string{"BEEF"},
	}

	require.NoError(t, svc.handleRecipeCreated(context.Background(), newRecipeEvent(recipe)))
	assert.Empty(t, store.created)
}

// A user subscribed to several of the recipe's tags gets one notification
// per tag.
func TestFanOutPerTagDuplicates(t *testing.T) {
	store := &fakeNotificationStore{}
	subs := &fakeSubscribers{byTag: map[string][]string{
		"DESSERT": {"alice@example.com"},
		"VEGAN":   {"alice@example.com"},
	}}
	svc := NewNotificationService(store, subs, util.NewEventBus())

	recipe := &model.Recipe{
		ID:            "r1",
		Name:          "Sorbet",
		OwnerEmail:    "owner@example.com",
		CommunityTags: []string{"DESSERT", "VEGAN"},
	}

	require.NoError(t, svc.handleRecipeCreated(context.Background(), newRecipeEvent(recipe)))

	require.Len(t, store.created, 2)
	assert.Equal(t, "DESSERT", store.created[0].CommunityTag)
	assert.Equal(t, "VEGAN", store.created[1].CommunityTag)
}

// One failing notification must not block the rest of the fan-out.
func TestFanOutIsolatesFailures(t *testing.T) {
	store := &fakeNotificationStore{failFor: "alice@example.com"}
	subs := &fakeSubscribers{byTag: map[string][]string{
		"BEEF": {"alice@example.com", "bob@example.com"},
	}}
	svc := NewNotificationService(store, subs, util.NewEventBus())

	recipe := &model.Recipe{
		ID:            "r1",
		Name:          "Stew",
		OwnerEmail:    "owner@example.com",
		CommunityTags: []string{"BEEF"},
	}

	require.NoError(t, svc.handleRecipeCreated(context.Background(), newRecipeEvent(recipe)))

	require.Len(t, store.created, 1)
	assert.Equal(t, "bob@example.com", store.created[0].UserEmail)
}

// A failing subscriber lookup for one tag skips that tag only.
func TestFanOutSkipsTagOnLookupFailure(t *testing.T) {
	store := &fakeNotificationStore{}
	lookups := 0
	subs := &flakySubscribers{
		fail:  "DESSERT",
		byTag: map[string][]string{"BEEF": {"bob@example.com"}},
		calls: &lookups,
	}
	svc := NewNotificationService(store, subs, util.NewEventBus())

	recipe := &model.Recipe{
		ID:            "r1",
		Name:          "Pie",
		OwnerEmail:    "owner@example.com",
		CommunityTags: []string{"DESSERT", "BEEF"},
	}

	require.NoError(t, svc.handleRecipeCreated(context.Background(), newRecipeEvent(recipe)))

	assert.Equal(t, 2, lookups)
	require.Len(t, store.created, 1)
	assert.Equal(t, "bob@example.com", store.created[0].UserEmail)
}

// Feed mutations are scoped to the caller; another user's notification id
// behaves like a missing one.
func TestFeedMutationsRequireOwnership(t *testing.T) {
	store := &fakeNotificationStore{created: []model.Notification{
		{ID: "n1", UserEmail: "victim@example.com"},
	}}
	svc := NewNotificationService(store, &fakeSubscribers{}, util.NewEventBus())
	ctx := context.Background()

	err := svc.MarkAsRead(ctx, "n1", "attacker@example.com")
	assert.ErrorIs(t, err, mealcraft_errors.ErrNotificationNotFound)
	assert.False(t, store.created[0].IsRead)

	err = svc.DeleteNotification(ctx, "n1", "attacker@example.com")
	assert.ErrorIs(t, err, mealcraft_errors.ErrNotificationNotFound)
	require.Len(t, store.created, 1)

	require.NoError(t, svc.MarkAsRead(ctx, "n1", "victim@example.com"))
	assert.True(t, store.created[0].IsRead)

	require.NoError(t, svc.DeleteNotification(ctx, "n1", "victim@example.com"))
	assert.Empty(t, store.created)
}

type flakySubscribers struct {
	fail  string
	byTag map[string][]string
	calls *int
}

func (f *flakySubscribers) GetUsersWithCOI(ctx context.Context, coi string) ([]string, error) {
	*f.calls++
	if coi == f.fail {
		return nil, errors.New("directory unavailable")
	}
	return f.byTag[coi], nil
}
