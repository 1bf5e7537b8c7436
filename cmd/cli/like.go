package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var likesLimit int

func init() {
	LikesListCommand.Flags().IntVar(&likesLimit, "limit", 20, "likes per page")

	LikesCommand.AddCommand(&LikesListCommand)
	LikesCommand.AddCommand(&LikeCommand)
	LikesCommand.AddCommand(&UnlikeCommand)

	inheritPersistentPreRun(&LikesCommand)

	RootCmd.AddCommand(&LikesCommand)
}

var LikesCommand = cobra.Command{
	Use:   "likes",
	Short: "Like and unlike posts",
	Long:  "Like and unlike posts",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ensureFreshToken(cmd)
	},
}

var LikesListCommand = cobra.Command{
	Use:   "list POST_ID",
	Short: "List who liked a post",
	Long:  "List who liked a post",
	Run: func(cmd *cobra.Command, args []string) {
		id := postID(args)

		page, err := posts.Likes(cmd.Context(), id, likesLimit, 0)
		if err != nil {
			logger.Fatal("could not list likes: ", err)
		}

		if page.Count == 0 {
			fmt.Println("No likes yet")
			return
		}
		for _, like := range page.Results {
			fmt.Printf("%s  %s\n", like.Timestamp, like.User)
		}
		printPage(page.Pagination)
	},
}

var LikeCommand = cobra.Command{
	Use:   "add POST_ID",
	Short: "Like a post",
	Long:  "Like a post",
	Run: func(cmd *cobra.Command, args []string) {
		id := postID(args)
		if !state.IsLoggedIn() {
			logger.Fatal("sign in before liking")
		}

		if err := posts.Like(cmd.Context(), id); err != nil {
			logger.Fatal("could not like post: ", err)
		}
		fmt.Printf("Liked post #%d\n", id)
	},
}

var UnlikeCommand = cobra.Command{
	Use:   "remove POST_ID",
	Short: "Remove a like from a post",
	Long:  "Remove a like from a post",
	Run: func(cmd *cobra.Command, args []string) {
		id := postID(args)
		if !state.IsLoggedIn() {
			logger.Fatal("sign in before unliking")
		}

		if err := posts.Unlike(cmd.Context(), id); err != nil {
			logger.Fatal("could not remove like: ", err)
		}
		fmt.Printf("Unliked post #%d\n", id)
	},
}
