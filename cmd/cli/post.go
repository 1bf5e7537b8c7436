package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	blog "github.com/DaihanaA/avanzatech-blog"
	"github.com/DaihanaA/avanzatech-blog/clients/post"
	"github.com/DaihanaA/avanzatech-blog/permission"
)

var (
	listPage     int
	listPageSize int

	createTitle         string
	createContent       string
	createCategory      int
	createPublic        string
	createAuthenticated string
	createTeam          string

	editTitle         string
	editContent       string
	editCategory      int
	editPublic        string
	editAuthenticated string
	editTeam          string

	deleteYes bool
)

func init() {
	PostsListCommand.Flags().IntVar(&listPage, "page", 1, "page to fetch")
	PostsListCommand.Flags().IntVar(&listPageSize, "page-size", 10, "posts per page")

	PostsCreateCommand.Flags().StringVar(&createTitle, "title", "", "post title")
	PostsCreateCommand.Flags().StringVar(&createContent, "content", "", "post content")
	PostsCreateCommand.Flags().IntVar(&createCategory, "category", 1, "post category")
	PostsCreateCommand.Flags().StringVar(&createPublic, "public", "READ", "public permission (NONE or READ)")
	PostsCreateCommand.Flags().StringVar(&createAuthenticated, "authenticated", "READ", "authenticated permission (NONE, READ or READ_EDIT)")
	PostsCreateCommand.Flags().StringVar(&createTeam, "team", "READ_EDIT", "team permission (NONE, READ or READ_EDIT)")

	PostsEditCommand.Flags().StringVar(&editTitle, "title", "", "new title")
	PostsEditCommand.Flags().StringVar(&editContent, "content", "", "new content")
	PostsEditCommand.Flags().IntVar(&editCategory, "category", 0, "new category")
	PostsEditCommand.Flags().StringVar(&editPublic, "public", "", "new public permission")
	PostsEditCommand.Flags().StringVar(&editAuthenticated, "authenticated", "", "new authenticated permission")
	PostsEditCommand.Flags().StringVar(&editTeam, "team", "", "new team permission")

	PostsDeleteCommand.Flags().BoolVar(&deleteYes, "yes", false, "skip the confirmation prompt")

	PostsCommand.AddCommand(&PostsListCommand)
	PostsCommand.AddCommand(&PostsShowCommand)
	PostsCommand.AddCommand(&PostsCreateCommand)
	PostsCommand.AddCommand(&PostsEditCommand)
	PostsCommand.AddCommand(&PostsDeleteCommand)

	inheritPersistentPreRun(&PostsCommand)

	RootCmd.AddCommand(&PostsCommand)
}

var PostsCommand = cobra.Command{
	Use:   "posts",
	Short: "List, read and manage posts",
	Long:  "List, read and manage posts",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ensureFreshToken(cmd)
	},
}

var PostsListCommand = cobra.Command{
	Use:   "list",
	Short: "List the posts visible to you",
	Long:  "List the posts visible to you",
	Run: func(cmd *cobra.Command, args []string) {
		page, err := posts.List(cmd.Context(), listPage, listPageSize)
		if err != nil {
			logger.Fatal("could not list posts: ", err)
		}

		viewer := state.Viewer()
		for _, p := range page.Results {
			marker := " "
			if permission.CanEditOrDelete(p.Access(), viewer) {
				marker = "*"
			}
			fmt.Printf("%s %4d  %-40s  by %-15s  %d likes, %d comments\n",
				marker, p.ID, truncate(p.Title, 40), p.Author, p.LikesCount, p.CommentCount)
		}
		fmt.Printf("page %d/%d (%d posts, * = editable)\n", page.CurrentPage, page.TotalPages, page.Count)
	},
}

var PostsShowCommand = cobra.Command{
	Use:   "show ID",
	Short: "Show a post with its comments",
	Long:  "Show a post with its comments",
	Run: func(cmd *cobra.Command, args []string) {
		id := postID(args)

		p, err := posts.Get(cmd.Context(), id)
		if err != nil {
			logger.Fatal("could not get post: ", err)
		}

		fmt.Printf("#%d %s\n", p.ID, p.Title)
		fmt.Printf("by %s", p.Author)
		if p.Team != "" {
			fmt.Printf(" (team %s)", p.Team)
		}
		fmt.Printf(" on %s\n\n", p.Timestamp)
		fmt.Println(p.Content)
		fmt.Printf("\n%d likes", p.LikesCount)
		if p.LikedByUser {
			fmt.Print(" (including yours)")
		}
		fmt.Println()

		comments, err := posts.Comments(cmd.Context(), id, 1, 5)
		if err != nil {
			logger.Fatal("could not get comments: ", err)
		}

		fmt.Printf("\n%d comments\n", comments.Count)
		for _, comment := range comments.Results {
			fmt.Printf("  %s: %s\n", comment.User, comment.Content)
		}

		if permission.CanEditOrDelete(p.Access(), state.Viewer()) {
			fmt.Println("\nYou can edit this post.")
		}
	},
}

var PostsCreateCommand = cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Long:  "Create a post",
	Run: func(cmd *cobra.Command, args []string) {
		if !state.IsLoggedIn() {
			logger.Fatal("sign in before creating posts")
		}
		if createTitle == "" || createContent == "" {
			logger.Fatal("both --title and --content are required")
		}

		visibility := permission.Visibility{
			Public:        permission.Level(createPublic),
			Authenticated: permission.Level(createAuthenticated),
			Team:          permission.Level(createTeam),
		}
		if !checkVisibility(visibility) {
			os.Exit(1)
		}

		p, err := posts.Create(cmd.Context(), post.CreateRequest{
			Title:                   createTitle,
			Content:                 createContent,
			Category:                createCategory,
			PublicPermission:        visibility.Public,
			AuthenticatedPermission: visibility.Authenticated,
			TeamPermission:          visibility.Team,
		})
		if err != nil {
			logger.Fatal("could not create post: ", err)
		}

		fmt.Printf("Post #%d created\n", p.ID)
	},
}

var PostsEditCommand = cobra.Command{
	Use:   "edit ID",
	Short: "Edit a post you have write access to",
	Long:  "Edit a post you have write access to",
	Run: func(cmd *cobra.Command, args []string) {
		id := postID(args)

		current, err := posts.Get(cmd.Context(), id)
		if err != nil {
			logger.Fatal("could not get post: ", err)
		}

		if !permission.CanEditOrDelete(current.Access(), state.Viewer()) {
			logger.Fatal("you do not have permission to edit this post")
		}

		// only the changed fields travel
		var r post.UpdateRequest
		if cmd.Flags().Changed("title") {
			r.Title = &editTitle
		}
		if cmd.Flags().Changed("content") {
			r.Content = &editContent
		}
		if cmd.Flags().Changed("category") {
			r.Category = &editCategory
		}

		visibility := current.Visibility()
		if cmd.Flags().Changed("public") {
			level := permission.Level(editPublic)
			r.PublicPermission = &level
			visibility.Public = level
		}
		if cmd.Flags().Changed("authenticated") {
			level := permission.Level(editAuthenticated)
			r.AuthenticatedPermission = &level
			visibility.Authenticated = level
		}
		if cmd.Flags().Changed("team") {
			level := permission.Level(editTeam)
			r.TeamPermission = &level
			visibility.Team = level
		}

		if r == (post.UpdateRequest{}) {
			fmt.Println("Nothing to change")
			return
		}

		if !checkVisibility(visibility) {
			os.Exit(1)
		}

		if _, err := posts.Update(cmd.Context(), id, r); err != nil {
			logger.Fatal("could not update post: ", err)
		}
		fmt.Printf("Post #%d updated\n", id)
	},
}

var PostsDeleteCommand = cobra.Command{
	Use:   "delete ID",
	Short: "Delete a post you have write access to",
	Long:  "Delete a post you have write access to",
	Run: func(cmd *cobra.Command, args []string) {
		id := postID(args)

		current, err := posts.Get(cmd.Context(), id)
		if err != nil {
			logger.Fatal("could not get post: ", err)
		}

		if !permission.CanEditOrDelete(current.Access(), state.Viewer()) {
			logger.Fatal("you do not have permission to delete this post")
		}

		if !deleteYes && !confirm(fmt.Sprintf("Delete post #%d %q? You will not get it back.", id, current.Title)) {
			fmt.Println("Cancelled")
			return
		}

		if err := posts.Delete(cmd.Context(), id); err != nil {
			logger.Fatal("could not delete post: ", err)
		}
		fmt.Printf("Post #%d deleted\n", id)
	},
}

// checkVisibility runs the triple through the validation rules and prints
// the rejection reason, mirroring what the create form shows.
func checkVisibility(v permission.Visibility) bool {
	res, err := permission.ValidateVisibility(v)
	if err != nil {
		logger.Error(err)
		return false
	}
	if !res.Valid {
		logger.Error("invalid permissions: ", res.Reason)
		return false
	}
	return true
}

func postID(args []string) int {
	if len(args) != 1 {
		logger.Fatal("expected 1 argument: the id of the post")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		logger.Fatal("error converting post id: ", err)
	}
	return id
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func printPage(p blog.Pagination) {
	fmt.Printf("page %d/%d (%d items)\n", p.CurrentPage, p.TotalPages, p.Count)
}
