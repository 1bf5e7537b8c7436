package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	commentsPage  int
	commentsLimit int
)

func init() {
	CommentsListCommand.Flags().IntVar(&commentsPage, "page", 1, "page to fetch")
	CommentsListCommand.Flags().IntVar(&commentsLimit, "limit", 5, "comments per page")

	CommentsCommand.AddCommand(&CommentsListCommand)
	CommentsCommand.AddCommand(&CommentsAddCommand)

	inheritPersistentPreRun(&CommentsCommand)

	RootCmd.AddCommand(&CommentsCommand)
}

var CommentsCommand = cobra.Command{
	Use:   "comments",
	Short: "Read and write comments",
	Long:  "Read and write comments",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ensureFreshToken(cmd)
	},
}

var CommentsListCommand = cobra.Command{
	Use:   "list POST_ID",
	Short: "List the comments of a post",
	Long:  "List the comments of a post",
	Run: func(cmd *cobra.Command, args []string) {
		id := postID(args)

		page, err := posts.Comments(cmd.Context(), id, commentsPage, commentsLimit)
		if err != nil {
			logger.Fatal("could not list comments: ", err)
		}

		for _, comment := range page.Results {
			fmt.Printf("%s  %s: %s\n", comment.Timestamp, comment.User, comment.Content)
		}
		printPage(page.Pagination)
	},
}

var CommentsAddCommand = cobra.Command{
	Use:   "add POST_ID CONTENT...",
	Short: "Comment on a post",
	Long:  "Comment on a post",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 2 {
			logger.Fatal("add wants at least 2 arguments: the post id and the comment")
		}
		if !state.IsLoggedIn() {
			logger.Fatal("sign in before commenting")
		}

		id, err := strconv.Atoi(args[0])
		if err != nil {
			logger.Fatal("error converting post id: ", err)
		}

		comment, err := posts.AddComment(cmd.Context(), id, strings.Join(args[1:], " "))
		if err != nil {
			logger.Fatal("could not add comment: ", err)
		}
		fmt.Printf("Comment #%d added on %q\n", comment.ID, comment.PostTitle)
	},
}
