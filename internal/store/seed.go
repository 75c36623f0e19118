package store

import (
	"time"

	"github.com/sakif/devhost/internal/model"
)

const helloWorldServer = `const express = require('express');
const app = express();
const port = 3000;

app.get('/', (req, res) => {
  res.send('Hello World!');
});

app.listen(port, () => {
  console.log(` + "`Example app listening on port ${port}`" + `);
});`

const useEffectHook = `import { useState, useEffect } from 'react';

function UserProfile({ userId }: { userId: string }) {
  const [user, setUser] = useState(null);

  useEffect(() => {
    let ignore = false;
    async function fetchUser() {
      const response = await fetch('/api/user/' + userId);
      const json = await response.json();
      if (!ignore) setUser(json);
    }
    fetchUser();
    return () => { ignore = true; };
  }, [userId]);

  if (!user) return <div>Loading...</div>;
  return <div>{user.name}</div>;
}`

// seedSnippets is the list materialized the first time the slot is found
// empty. The timestamps are relative to now, so a fresh install always shows
// one snippet from today and one from yesterday.
func seedSnippets(now time.Time) []model.Snippet {
	return []model.Snippet{
		{
			ID:          "1",
			Title:       "Hello World Server",
			Description: "A simple Express.js server setup.",
			Language:    model.JavaScript,
			Code:        helloWorldServer,
			CreatedAt:   now,
			Author:      "Admin",
			Likes:       5,
		},
		{
			ID:          "2",
			Title:       "React UseEffect Hook",
			Description: "Example of fetching data with useEffect.",
			Language:    model.TypeScript,
			Code:        useEffectHook,
			CreatedAt:   now.Add(-24 * time.Hour),
			Author:      "ReactDev",
			Likes:       12,
		},
	}
}
