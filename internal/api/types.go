package api

// Wire types for the Verso backend JSON API.
//
// Timestamps are kept as the backend's ISO-8601 strings: the client only
// displays them, and the backend emits naive datetimes that do not round-trip
// through time.Time cleanly.

// Token is returned by register, login and verify-email.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the authenticated user's profile (and public profiles).
type User struct {
	ID        int     `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
	CreatedAt string  `json:"created_at"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProfileUpdate changes the editable parts of the current user's profile.
type ProfileUpdate struct {
	FullName  *string `json:"full_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Book is an immutable catalog snapshot; identity by ID.
type Book struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	ISBN          *string `json:"isbn"`
	Description   *string `json:"description"`
	CoverURL      *string `json:"cover_url"`
	PublishedYear *int    `json:"published_year"`
	Genre         *string `json:"genre"`
	PageCount     *int    `json:"page_count"`
	Publisher     *string `json:"publisher"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
	CreatedAt     string  `json:"created_at"`
}

// Library entry statuses.
const (
	StatusWantToRead       = "want_to_read"
	StatusCurrentlyReading = "currently_reading"
	StatusRead             = "read"
	StatusOwned            = "owned"
)

// LibraryEntry is the user's relationship to one book.
// Unique per (user, book); CurrentPage never exceeds the book's page count.
type LibraryEntry struct {
	Book        Book     `json:"book"`
	Status      string   `json:"status"`
	Rating      *float64 `json:"rating"`
	Review      *string  `json:"review"`
	CurrentPage *int     `json:"current_page"`
	IsOwned     bool     `json:"is_owned"`
	StartedAt   *string  `json:"started_at"`
	FinishedAt  *string  `json:"finished_at"`
	AddedAt     string   `json:"added_at"`
}

// AddBookRequest adds a book to the caller's library.
type AddBookRequest struct {
	BookID  int      `json:"book_id"`
	Status  string   `json:"status"`
	Rating  *float64 `json:"rating,omitempty"`
	Review  *string  `json:"review,omitempty"`
	IsOwned bool     `json:"is_owned,omitempty"`
}

// UpdateBookRequest changes an existing library entry. Nil fields are untouched.
type UpdateBookRequest struct {
	Status      *string  `json:"status,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Review      *string  `json:"review,omitempty"`
	CurrentPage *int     `json:"current_page,omitempty"`
	IsOwned     *bool    `json:"is_owned,omitempty"`
}

// NewBook creates a catalog book directly.
type NewBook struct {
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	ISBN          *string `json:"isbn,omitempty"`
	Description   *string `json:"description,omitempty"`
	CoverURL      *string `json:"cover_url,omitempty"`
	PublishedYear *int    `json:"published_year,omitempty"`
	Genre         *string `json:"genre,omitempty"`
	PageCount     *int    `json:"page_count,omitempty"`
	Publisher     *string `json:"publisher,omitempty"`
}

// SearchResult is one hit from the external book search.
type SearchResult struct {
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	ISBN          *string `json:"isbn"`
	Description   *string `json:"description"`
	CoverURL      *string `json:"cover_url"`
	PublishedYear *int    `json:"published_year"`
	Genre         *string `json:"genre"`
	PageCount     *int    `json:"page_count"`
	Publisher     *string `json:"publisher"`
	AverageRating float64 `json:"average_rating"`
}

// Goal is the reading goal for one year and its server-computed progress.
// Goal and Year are nil when no goal has been set.
type Goal struct {
	Goal     *int `json:"goal"`
	Year     *int `json:"year"`
	Progress int  `json:"progress"`
}

// IsSet reports whether a goal has been configured.
func (g Goal) IsSet() bool {
	return g.Goal != nil && *g.Goal > 0
}

// ProgressUpdate is the response to a current-page update.
type ProgressUpdate struct {
	CurrentPage int `json:"current_page"`
	Percentage  int `json:"percentage"`
}

// Points mirrors the backend-owned points balance.
type Points struct {
	Points   int    `json:"points"`
	Username string `json:"username"`
}

// ReadingStats is the coarse per-status summary.
type ReadingStats struct {
	BooksRead        int `json:"books_read"`
	CurrentlyReading int `json:"currently_reading"`
	WantToRead       int `json:"want_to_read"`
	BooksOwned       int `json:"books_owned"`
	TotalPagesRead   int `json:"total_pages_read"`
}

// DetailedStats backs the statistics page charts.
type DetailedStats struct {
	Overview struct {
		TotalBooks         int     `json:"total_books"`
		BooksRead          int     `json:"books_read"`
		CurrentlyReading   int     `json:"currently_reading"`
		WantToRead         int     `json:"want_to_read"`
		TotalPages         int     `json:"total_pages"`
		TotalRatings       int     `json:"total_ratings"`
		TotalReviews       int     `json:"total_reviews"`
		AverageRatingGiven float64 `json:"average_rating_given"`
	} `json:"overview"`
	BooksByMonth        map[string]int `json:"books_by_month"`
	BooksByYear         map[string]int `json:"books_by_year"`
	PagesByMonth        map[string]int `json:"pages_by_month"`
	Genres              map[string]int `json:"genres"`
	RatingsDistribution map[string]int `json:"ratings_distribution"`
	Authors             map[string]int `json:"authors"`
	PublicationYears    map[string]int `json:"publication_years"`
	ReadingPace         struct {
		AvgDaysPerBook *float64  `json:"avg_days_per_book"`
		FastestRead    *PaceBook `json:"fastest_read"`
		SlowestRead    *PaceBook `json:"slowest_read"`
	} `json:"reading_pace"`
	MonthlyGoalProgress []MonthlyGoal `json:"monthly_goal_progress"`
}

// PaceBook names the fastest or slowest read.
type PaceBook struct {
	Title string  `json:"title"`
	Days  float64 `json:"days"`
}

// MonthlyGoal is one bar of the monthly goal chart.
type MonthlyGoal struct {
	Month  string  `json:"month"`
	Target float64 `json:"target"`
	Actual int     `json:"actual"`
}

// Streak describes reading consistency.
type Streak struct {
	CurrentStreakMonths int              `json:"current_streak_months"`
	LongestStreakMonths int              `json:"longest_streak_months"`
	BooksThisMonth      int              `json:"books_this_month"`
	BooksThisYear       int              `json:"books_this_year"`
	MostProductiveMonth *ProductiveMonth `json:"most_productive_month"`
	ReadingSince        *int             `json:"reading_since"`
}

// ProductiveMonth is the month with the most finished books.
type ProductiveMonth struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// ReviewUser identifies a reviewer.
type ReviewUser struct {
	ID        int     `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

// Review is one user's review of a book, with like data.
type Review struct {
	User      ReviewUser `json:"user"`
	Rating    *float64   `json:"rating"`
	Review    *string    `json:"review"`
	Status    string     `json:"status"`
	CreatedAt *string    `json:"created_at"`
	LikeCount int        `json:"like_count"`
	UserLiked bool       `json:"user_liked"`
}

// BookReviews is the reviews listing for one book.
type BookReviews struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
}

// RecentReview is one entry from the recent-reviews feed.
type RecentReview struct {
	User      ReviewUser `json:"user"`
	Book      Book       `json:"book"`
	Rating    *float64   `json:"rating"`
	Review    string     `json:"review"`
	CreatedAt *string    `json:"created_at"`
	LikeCount int        `json:"like_count"`
	UserLiked bool       `json:"user_liked"`
}

// LikeCount reports how many likes a review has.
type LikeCount struct {
	LikeCount int  `json:"like_count"`
	UserLiked bool `json:"user_liked"`
}

// Activity is one social feed item.
type Activity struct {
	ID           int     `json:"id"`
	UserID       int     `json:"user_id"`
	ActivityType string  `json:"activity_type"`
	BookID       *int    `json:"book_id"`
	Content      *string `json:"content"`
	CreatedAt    string  `json:"created_at"`
	User         User    `json:"user"`
	Book         *Book   `json:"book"`
}

// UserSummary is a search/browse hit.
type UserSummary struct {
	ID        int     `json:"id"`
	Username  string  `json:"username"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
}

// Profile is another user's public profile with social counts.
type Profile struct {
	ID             int     `json:"id"`
	Username       string  `json:"username"`
	FullName       *string `json:"full_name"`
	Bio            *string `json:"bio"`
	AvatarURL      *string `json:"avatar_url"`
	CreatedAt      string  `json:"created_at"`
	BooksRead      int     `json:"books_read"`
	FollowersCount int     `json:"followers_count"`
	FollowingCount int     `json:"following_count"`
	IsFollowing    bool    `json:"is_following"`
}

// ImportResult reports a partially-successful Goodreads import.
// Errors are per-row messages; a non-empty list does not mean the
// import failed.
type ImportResult struct {
	TotalParsed int            `json:"total_parsed"`
	Imported    int            `json:"imported"`
	Skipped     int            `json:"skipped"`
	Errors      []string       `json:"errors"`
	Books       []ImportedBook `json:"books"`
}

// ImportedBook is one successfully imported row.
type ImportedBook struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Status string `json:"status"`
}

// ImportPreview summarizes what an import would do, without importing.
type ImportPreview struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"by_status"`
	WithRatings int            `json:"with_ratings"`
	WithReviews int            `json:"with_reviews"`
	SampleBooks []SampleBook   `json:"sample_books"`
	Errors      []string       `json:"errors"`
}

// SampleBook is one of the first rows shown in an import preview.
type SampleBook struct {
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Status string   `json:"status"`
	Rating *float64 `json:"rating"`
	Year   *int     `json:"year"`
}

// Collection groups books under a user-defined name.
type Collection struct {
	ID          int     `json:"id"`
	UserID      int     `json:"user_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsPublic    bool    `json:"is_public"`
	CreatedAt   string  `json:"created_at"`
	BookCount   int     `json:"book_count"`
}

// NewCollection creates a collection.
type NewCollection struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsPublic    bool    `json:"is_public"`
}

// Recommendations is the backend's AI-generated suggestion set.
type Recommendations struct {
	Books     []Book `json:"books"`
	Reasoning string `json:"reasoning"`
}

// Circle is a reading circle summary.
type Circle struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	CoverURL        *string `json:"cover_url"`
	InviteCode      string  `json:"invite_code"`
	IsPrivate       bool    `json:"is_private"`
	CreatedBy       int     `json:"created_by"`
	CreatorUsername string  `json:"creator_username"`
	MemberCount     int     `json:"member_count"`
	CreatedAt       string  `json:"created_at"`
}

// CircleMember is one member of a circle.
type CircleMember struct {
	UserID       int     `json:"user_id"`
	Username     string  `json:"username"`
	AvatarURL    *string `json:"avatar_url"`
	Role         string  `json:"role"`
	CirclePoints int     `json:"circle_points"`
	JoinedAt     string  `json:"joined_at"`
}

// CircleDetail is a circle with membership info for the caller.
type CircleDetail struct {
	Circle
	Members  []CircleMember `json:"members"`
	IsMember bool           `json:"is_member"`
	IsAdmin  bool           `json:"is_admin"`
}

// NewCircle creates a reading circle.
type NewCircle struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsPrivate   bool    `json:"is_private"`
}

// Challenge types.
const (
	ChallengeBookRace   = "book_race"
	ChallengeBooksCount = "books_count"
	ChallengePagesCount = "pages_count"
	ChallengeGenre      = "genre_challenge"
)

// Challenge is a circle challenge with everyone's progress.
type Challenge struct {
	ID              int                 `json:"id"`
	CircleID        int                 `json:"circle_id"`
	Name            string              `json:"name"`
	Description     *string             `json:"description"`
	ChallengeType   string              `json:"challenge_type"`
	TargetBookID    *int                `json:"target_book_id"`
	TargetBookTitle *string             `json:"target_book_title"`
	TargetBookCover *string             `json:"target_book_cover"`
	TargetBookPages *int                `json:"target_book_pages"`
	TargetCount     *int                `json:"target_count"`
	TargetGenre     *string             `json:"target_genre"`
	StartDate       string              `json:"start_date"`
	EndDate         string              `json:"end_date"`
	IsActive        bool                `json:"is_active"`
	CreatedBy       int                 `json:"created_by"`
	CreatedAt       string              `json:"created_at"`
	Progress        []ChallengeProgress `json:"progress"`
}

// ChallengeProgress is one participant's standing in a challenge.
type ChallengeProgress struct {
	UserID       int     `json:"user_id"`
	Username     string  `json:"username"`
	AvatarURL    *string `json:"avatar_url"`
	CurrentValue int     `json:"current_value"`
	Completed    bool    `json:"completed"`
	CompletedAt  *string `json:"completed_at"`
	Percentage   float64 `json:"percentage"`
}

// NewChallenge creates a circle challenge.
type NewChallenge struct {
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	ChallengeType string  `json:"challenge_type"`
	TargetBookID  *int    `json:"target_book_id,omitempty"`
	TargetCount   *int    `json:"target_count,omitempty"`
	TargetGenre   *string `json:"target_genre,omitempty"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
}

// CircleActivity is one circle feed item.
type CircleActivity struct {
	ID           int     `json:"id"`
	UserID       int     `json:"user_id"`
	Username     string  `json:"username"`
	AvatarURL    *string `json:"avatar_url"`
	ActivityType string  `json:"activity_type"`
	BookTitle    *string `json:"book_title"`
	BookCover    *string `json:"book_cover"`
	Content      *string `json:"content"`
	CreatedAt    string  `json:"created_at"`
}

// LeaderboardRow is one ranked circle member.
type LeaderboardRow struct {
	Rank                int     `json:"rank"`
	UserID              int     `json:"user_id"`
	Username            string  `json:"username"`
	AvatarURL           *string `json:"avatar_url"`
	CirclePoints        int     `json:"circle_points"`
	ChallengesCompleted int     `json:"challenges_completed"`
	IsCurrentUser       bool    `json:"is_current_user"`
}
