package store

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Luismorlan/newsportal/model"
	"github.com/Luismorlan/newsportal/utils"
	"github.com/Luismorlan/newsportal/utils/dotenv"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

// fakeQuotaStore counts posts in memory, keyed the same way redis would be.
type fakeQuotaStore struct {
	counts map[string]int64
	err    error
}

func newFakeQuotaStore() *fakeQuotaStore {
	return &fakeQuotaStore{counts: map[string]int64{}}
}

func (f *fakeQuotaStore) IncrDailyPostCount(authorId string, date string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	key := authorId + ":" + date
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeQuotaStore) DecrDailyPostCount(authorId string, date string) error {
	f.counts[authorId+":"+date]--
	return nil
}

func mustCreateUser(t *testing.T, s *Store, id string) *model.User {
	t.Helper()
	user, err := s.CreateUser(id, "name_"+id, id+"@test.com")
	require.NoError(t, err)
	return user
}

func mustCreateAuthor(t *testing.T, s *Store, userID string) *model.Author {
	t.Helper()
	mustCreateUser(t, s, userID)
	author, err := s.GetOrCreateAuthor(userID)
	require.NoError(t, err)
	return author
}

func mustCreatePost(t *testing.T, s *Store, authorID string, postType string, categoryIDs ...string) *model.Post {
	t.Helper()
	post, err := s.CreatePost(CreatePostInput{
		AuthorID:    authorID,
		PostType:    postType,
		Title:       "title",
		Content:     "content",
		CategoryIDs: categoryIDs,
	})
	require.NoError(t, err)
	return post
}

func TestSubscribeIsIdempotent(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	user := mustCreateUser(t, s, "u1")
	category, err := s.CreateCategory("sports")
	require.NoError(t, err)

	require.NoError(t, s.Subscribe(category.Id, user.Id))
	require.NoError(t, s.Subscribe(category.Id, user.Id))

	subscribers, err := s.SubscribersOf(category.Id)
	require.NoError(t, err)
	require.Len(t, subscribers, 1)
	assert.Equal(t, "u1", subscribers[0].Id)
}

func TestUnsubscribeNonMemberIsNoop(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	user := mustCreateUser(t, s, "u1")
	category, err := s.CreateCategory("sports")
	require.NoError(t, err)

	require.NoError(t, s.Unsubscribe(category.Id, user.Id))

	require.NoError(t, s.Subscribe(category.Id, user.Id))
	require.NoError(t, s.Unsubscribe(category.Id, user.Id))
	require.NoError(t, s.Unsubscribe(category.Id, user.Id))

	subscribers, err := s.SubscribersOf(category.Id)
	require.NoError(t, err)
	assert.Empty(t, subscribers)
}

func TestSubscribeUnknownCategory(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	mustCreateUser(t, s, "u1")
	assert.True(t, errors.Is(s.Subscribe("no_such_category", "u1"), ErrNotFound))
}

func TestGetPostChecksRouteNamespace(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	author := mustCreateAuthor(t, s, "u1")
	news := mustCreatePost(t, s, author.Id, model.PostTypeNews)

	got, err := s.GetPost(news.Id, model.PostTypeNews)
	require.NoError(t, err)
	assert.Equal(t, news.Id, got.Id)

	// A news id looked up in the article namespace does not exist.
	_, err = s.GetPost(news.Id, model.PostTypeArticle)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreatePostAttachesCategories(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	author := mustCreateAuthor(t, s, "u1")
	sports, err := s.CreateCategory("sports")
	require.NoError(t, err)
	tech, err := s.CreateCategory("tech")
	require.NoError(t, err)

	post := mustCreatePost(t, s, author.Id, model.PostTypeArticle, sports.Id, tech.Id)

	got, err := s.GetPostWithCategories(post.Id)
	require.NoError(t, err)
	assert.Len(t, got.Categories, 2)
}

func TestCreatePostRejectsUnknownCategory(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	author := mustCreateAuthor(t, s, "u1")
	_, err := s.CreatePost(CreatePostInput{
		AuthorID:    author.Id,
		PostType:    model.PostTypeNews,
		Title:       "title",
		Content:     "content",
		CategoryIDs: []string{"no_such_category"},
	})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDailyPostQuota(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	quota := newFakeQuotaStore()
	s := NewStoreWithQuota(db, quota)

	author := mustCreateAuthor(t, s, "u1")
	for i := 0; i < MaxDailyPostsPerAuthor; i++ {
		mustCreatePost(t, s, author.Id, model.PostTypeNews)
	}

	_, err := s.CreatePost(CreatePostInput{
		AuthorID: author.Id,
		PostType: model.PostTypeNews,
		Title:    "one too many",
		Content:  "content",
	})
	assert.True(t, errors.Is(err, ErrDailyQuotaExceeded))

	// The rejected attempt must not consume quota.
	date := time.Now().Format("2006-01-02")
	assert.Equal(t, int64(MaxDailyPostsPerAuthor), quota.counts[author.Id+":"+date])

	// Another author is unaffected.
	other := mustCreateAuthor(t, s, "u2")
	mustCreatePost(t, s, other.Id, model.PostTypeNews)
}

func TestFailedCreationReleasesQuota(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	quota := newFakeQuotaStore()
	s := NewStoreWithQuota(db, quota)

	author := mustCreateAuthor(t, s, "u1")
	date := time.Now().Format("2006-01-02")

	// A creation rejected on an unknown category must give its slot back,
	// failed attempts never eat into the daily allowance.
	_, err := s.CreatePost(CreatePostInput{
		AuthorID:    author.Id,
		PostType:    model.PostTypeNews,
		Title:       "title",
		Content:     "content",
		CategoryIDs: []string{"no_such_category"},
	})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, int64(0), quota.counts[author.Id+":"+date])

	// The full allowance is still available afterwards.
	for i := 0; i < MaxDailyPostsPerAuthor; i++ {
		mustCreatePost(t, s, author.Id, model.PostTypeNews)
	}
	assert.Equal(t, int64(MaxDailyPostsPerAuthor), quota.counts[author.Id+":"+date])
}

func TestCreatePostDeduplicatesCategories(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	author := mustCreateAuthor(t, s, "u1")
	sports, err := s.CreateCategory("sports")
	require.NoError(t, err)

	post := mustCreatePost(t, s, author.Id, model.PostTypeNews, sports.Id, sports.Id)

	got, err := s.GetPostWithCategories(post.Id)
	require.NoError(t, err)
	assert.Len(t, got.Categories, 1)
}

func TestQuotaStoreOutageAllowsCreation(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	quota := newFakeQuotaStore()
	quota.err = errors.New("redis down")
	s := NewStoreWithQuota(db, quota)

	author := mustCreateAuthor(t, s, "u1")
	mustCreatePost(t, s, author.Id, model.PostTypeNews)
}

func TestUpdatePostRequiresOwnership(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	owner := mustCreateAuthor(t, s, "u1")
	intruder := mustCreateAuthor(t, s, "u2")
	post := mustCreatePost(t, s, owner.Id, model.PostTypeNews)

	_, err := s.UpdatePost(post.Id, model.PostTypeNews, intruder.Id, UpdatePostInput{
		Title:   "hijacked",
		Content: "content",
	})
	assert.True(t, errors.Is(err, ErrNotFound))

	updated, err := s.UpdatePost(post.Id, model.PostTypeNews, owner.Id, UpdatePostInput{
		Title:   "edited",
		Content: "new content",
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Title)
}

func TestDeletePostRemovesComments(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	author := mustCreateAuthor(t, s, "u1")
	post := mustCreatePost(t, s, author.Id, model.PostTypeNews)
	_, err := s.CreateComment(post.Id, "u1", "first")
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(post.Id, model.PostTypeNews))

	_, err = s.GetPost(post.Id, model.PostTypeNews)
	assert.True(t, errors.Is(err, ErrNotFound))

	// Comments of a deleted post are gone with it.
	_, err = s.CommentsOfPost(post.Id)
	assert.True(t, errors.Is(err, ErrNotFound))

	var count int64
	require.NoError(t, db.Model(&model.Comment{}).Where("post_id = ?", post.Id).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVotePostMovesRating(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	author := mustCreateAuthor(t, s, "u1")
	post := mustCreatePost(t, s, author.Id, model.PostTypeNews)

	require.NoError(t, s.VotePost(post.Id, 1))
	require.NoError(t, s.VotePost(post.Id, 1))
	require.NoError(t, s.VotePost(post.Id, -1))

	got, err := s.GetPost(post.Id, model.PostTypeNews)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Rating)
}

func TestRecomputeAuthorRating(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	author := mustCreateAuthor(t, s, "u1")
	reader := mustCreateUser(t, s, "u2")

	post := mustCreatePost(t, s, author.Id, model.PostTypeNews)
	require.NoError(t, s.VotePost(post.Id, 1))
	require.NoError(t, s.VotePost(post.Id, 1))

	// A comment by the author's own user on someone's post.
	ownComment, err := s.CreateComment(post.Id, "u1", "self comment")
	require.NoError(t, err)
	require.NoError(t, s.VoteComment(ownComment.Id, 1))

	// A reader comment on the author's post.
	readerComment, err := s.CreateComment(post.Id, reader.Id, "reader comment")
	require.NoError(t, err)
	require.NoError(t, s.VoteComment(readerComment.Id, 1))
	require.NoError(t, s.VoteComment(readerComment.Id, 1))

	got, err := s.RecomputeAuthorRating(author.Id)
	require.NoError(t, err)

	// post rating 2 weighted x3, own comment rating 1, comments on the
	// author's posts 1+2.
	assert.Equal(t, 2*3+1+(1+2), got.Rating)
}

func TestPostsInCategorySince(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	author := mustCreateAuthor(t, s, "u1")
	category, err := s.CreateCategory("sports")
	require.NoError(t, err)

	var posts []*model.Post
	for i := 0; i < 3; i++ {
		post, err := s.CreatePost(CreatePostInput{
			AuthorID:    author.Id,
			PostType:    model.PostTypeNews,
			Title:       fmt.Sprintf("title %d", i),
			Content:     "content",
			CategoryIDs: []string{category.Id},
		})
		require.NoError(t, err)
		posts = append(posts, post)
	}
	// A post outside the category never shows up.
	mustCreatePost(t, s, author.Id, model.PostTypeNews)

	got, err := s.PostsInCategorySince(category.Id, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, posts[2].Id, got[0].Id)

	got, err = s.PostsInCategorySince(category.Id, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetOrCreateAuthorIsIdempotent(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	mustCreateUser(t, s, "u1")
	first, err := s.GetOrCreateAuthor("u1")
	require.NoError(t, err)
	second, err := s.GetOrCreateAuthor("u1")
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
}

func TestDigestRunRoundTrip(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewStore(db)

	run, err := s.LastDigestRun()
	require.NoError(t, err)
	assert.Nil(t, run)

	firedAt := time.Now().Truncate(time.Second)
	require.NoError(t, s.RecordDigestRun(firedAt.Add(-7*24*time.Hour), 1))
	require.NoError(t, s.RecordDigestRun(firedAt, 4))

	run, err = s.LastDigestRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, 4, run.EmailsSent)
	assert.WithinDuration(t, firedAt, run.FiredAt, time.Second)
}
