// Command seed fills a running blog server with fake users, posts, likes
// and comments through its REST API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

type account struct {
	ID    int64
	Token string
}

type client struct {
	base string
	http *http.Client
}

func main() {
	base := flag.String("url", "http://localhost:8080/api", "API base URL")
	users := flag.Int("users", 5, "number of users to register")
	posts := flag.Int("posts", 3, "posts per user")
	comments := flag.Int("comments", 2, "comments per post")
	seed := flag.Int64("seed", 0, "random seed (0 picks one from the clock)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	gofakeit.Seed(*seed)

	c := &client{base: strings.TrimRight(*base, "/"), http: &http.Client{Timeout: 10 * time.Second}}

	accounts := make([]account, 0, *users)
	for i := 0; i < *users; i++ {
		a, err := c.register()
		if err != nil {
			log.Fatalf("register: %v", err)
		}
		accounts = append(accounts, a)
	}
	log.Printf("registered %d users", len(accounts))

	var postIDs []int64
	for _, a := range accounts {
		for i := 0; i < *posts; i++ {
			id, err := c.createPost(a)
			if err != nil {
				log.Fatalf("create post: %v", err)
			}
			postIDs = append(postIDs, id)
		}
	}
	log.Printf("created %d posts", len(postIDs))

	var nComments, nLikes int
	for _, postID := range postIDs {
		for i := 0; i < *comments; i++ {
			a := accounts[gofakeit.Number(0, len(accounts)-1)]
			if err := c.comment(a, postID); err != nil {
				log.Fatalf("comment: %v", err)
			}
			nComments++
		}
		for _, a := range accounts {
			if gofakeit.Bool() {
				if err := c.like(a, postID); err != nil {
					log.Fatalf("like: %v", err)
				}
				nLikes++
			}
		}
	}
	log.Printf("created %d comments and %d likes (seed %d)", nComments, nLikes, *seed)
}

func (c *client) register() (account, error) {
	username := strings.ToLower(gofakeit.Username()) + gofakeit.DigitN(3)
	var res struct {
		User struct {
			ID int64 `json:"_id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@" + gofakeit.DomainName(),
		"password": gofakeit.Password(true, true, true, false, false, 12),
	}, http.StatusCreated, &res)
	return account{ID: res.User.ID, Token: res.Token}, err
}

func (c *client) createPost(a account) (int64, error) {
	tags := make([]string, gofakeit.Number(0, 4))
	for i := range tags {
		tags[i] = gofakeit.HipsterWord()
	}
	var res struct {
		ID int64 `json:"_id"`
	}
	err := c.do(http.MethodPost, "/posts", a.Token, map[string]any{
		"title":   gofakeit.Sentence(gofakeit.Number(3, 8)),
		"content": gofakeit.Paragraph(gofakeit.Number(1, 4), 4, 12, "\n\n"),
		"tags":    tags,
	}, http.StatusCreated, &res)
	return res.ID, err
}

func (c *client) comment(a account, postID int64) error {
	return c.do(http.MethodPost, "/comments", a.Token, map[string]any{
		"content": gofakeit.Sentence(gofakeit.Number(4, 16)),
		"post":    postID,
	}, http.StatusCreated, nil)
}

func (c *client) like(a account, postID int64) error {
	return c.do(http.MethodPost, fmt.Sprintf("/posts/%d/like", postID), a.Token, nil, http.StatusOK, nil)
}

func (c *client) do(method, path, token string, body any, want int, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
